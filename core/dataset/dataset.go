// Package dataset holds the in-memory training data consumed by every
// algorithm family. A Dataset is append-only until sealed and every instance
// matches the dimensions declared by its Header.
package dataset

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// Kind discriminates the dataset families.
type Kind string

const (
	KindBaselearner     Kind = "baselearner"
	KindObjectRanking   Kind = "object_ranking"
	KindRankAggregation Kind = "rank_aggregation"
)

// Header describes the shape shared by all instances of a dataset.
type Header struct {
	Kind              Kind
	ContextDimensions int
	// ItemDimensions is 0 for kinds without an item dimension.
	ItemDimensions int
	// Capacity bounds the number of instances; 0 means unbounded.
	Capacity int
	// ItemFeatures is the item feature table of object ranking datasets.
	ItemFeatures [][]float64
	// Labels is the label set of rank aggregation datasets.
	Labels []int
}

func (h Header) clone() Header {
	c := h
	if h.ItemFeatures != nil {
		c.ItemFeatures = make([][]float64, len(h.ItemFeatures))
		for i, row := range h.ItemFeatures {
			c.ItemFeatures[i] = append([]float64(nil), row...)
		}
	}
	c.Labels = append([]int(nil), h.Labels...)
	return c
}

// Instance is implemented by the concrete instance kinds of this package.
type Instance[T any] interface {
	Kind() Kind
	Copy() T
	check(h Header) error
	hash(d *xxhash.Digest)
}

// Interface is the kind-independent view of a dataset used by algorithms
// before they narrow to a concrete instance type.
type Interface interface {
	Header() Header
	NumberOfInstances() int
	Fingerprint() uint64
}

// Dataset is an ordered collection of instances of one kind.
type Dataset[T Instance[T]] struct {
	header    Header
	instances []T
	sealed    bool
}

// New creates an empty dataset.
func New[T Instance[T]](header Header) *Dataset[T] {
	capHint := header.Capacity
	return &Dataset[T]{header: header.clone(), instances: make([]T, 0, capHint)}
}

// Header returns a copy of the header.
func (d *Dataset[T]) Header() Header {
	return d.header.clone()
}

// NumberOfInstances returns the instance count.
func (d *Dataset[T]) NumberOfInstances() int {
	return len(d.instances)
}

// Instance returns the i-th instance.
func (d *Dataset[T]) Instance(i int) (T, error) {
	if i < 0 || i >= len(d.instances) {
		var zero T
		return zero, errors.NewIndexOutOfRangeError("Dataset.Instance", i, len(d.instances))
	}
	return d.instances[i], nil
}

// Instances returns the instances in order. Callers must not modify them.
func (d *Dataset[T]) Instances() []T {
	return d.instances
}

// AddInstance appends a copy of inst.
func (d *Dataset[T]) AddInstance(inst T) error {
	if d.sealed {
		return errors.WithStack(errors.ErrDatasetSealed)
	}
	if d.header.Capacity > 0 && len(d.instances) >= d.header.Capacity {
		return errors.Wrapf(errors.ErrDatasetSealed, "dataset is full (capacity %d)", d.header.Capacity)
	}
	if inst.Kind() != d.header.Kind {
		return errors.NewDatasetKindError("Dataset.AddInstance", string(d.header.Kind), string(inst.Kind()))
	}
	if err := inst.check(d.header); err != nil {
		return err
	}
	d.instances = append(d.instances, inst.Copy())
	return nil
}

// Seal forbids further additions.
func (d *Dataset[T]) Seal() {
	d.sealed = true
}

// Sealed reports whether Seal was called.
func (d *Dataset[T]) Sealed() bool {
	return d.sealed
}

// PartOfDataset deep-copies the half-open range [from, to). The receiver is
// not modified.
func (d *Dataset[T]) PartOfDataset(from, to int) (*Dataset[T], error) {
	n := len(d.instances)
	if from < 0 || from > n {
		return nil, errors.NewIndexOutOfRangeError("Dataset.PartOfDataset", from, n+1)
	}
	if to < from || to > n {
		return nil, errors.NewIndexOutOfRangeError("Dataset.PartOfDataset", to, n+1)
	}

	h := d.header.clone()
	h.Capacity = 0
	part := &Dataset[T]{header: h, instances: make([]T, 0, to-from), sealed: d.sealed}
	for _, inst := range d.instances[from:to] {
		part.instances = append(part.instances, inst.Copy())
	}
	return part, nil
}

// Fingerprint hashes the header and every instance.
func (d *Dataset[T]) Fingerprint() uint64 {
	digest := xxhash.New()
	_, _ = digest.WriteString(string(d.header.Kind))
	writeInt(digest, d.header.ContextDimensions)
	writeInt(digest, d.header.ItemDimensions)
	writeInt(digest, len(d.header.ItemFeatures))
	for _, row := range d.header.ItemFeatures {
		writeFloats(digest, row)
	}
	writeInts(digest, d.header.Labels)
	writeInt(digest, len(d.instances))
	for _, inst := range d.instances {
		inst.hash(digest)
	}
	return digest.Sum64()
}

func writeInt(d *xxhash.Digest, v int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
	_, _ = d.Write(buf[:])
}

func writeInts(d *xxhash.Digest, vs []int) {
	writeInt(d, len(vs))
	for _, v := range vs {
		writeInt(d, v)
	}
}

func writeFloats(d *xxhash.Digest, vs []float64) {
	writeInt(d, len(vs))
	var buf [8]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
}
