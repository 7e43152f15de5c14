// Package objectranking learns to rank items within a context by reducing
// the problem to regression on expected ranks.
package objectranking

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/core/ranking"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
	"github.com/YuminosukeSato/preflearn/registry"
)

// ExpectedRankRegression trains a base learner to predict the normalised
// expected rank of an item in a context.
type ExpectedRankRegression struct {
	*algorithm.Trainable[*ExpectedRankRegressionConfiguration]
}

// NewExpectedRankRegression creates the transform with the default
// linear regression base learner.
func NewExpectedRankRegression(opts ...algorithm.Option) *ExpectedRankRegression {
	e := &ExpectedRankRegression{}
	e.Trainable = algorithm.NewTrainable("ExpectedRankRegression", dataset.KindObjectRanking,
		NewExpectedRankRegressionConfiguration, e.train, opts...)
	return e
}

func (e *ExpectedRankRegression) train(cfg *ExpectedRankRegressionConfiguration, ds dataset.Interface) (model.LearningModel, error) {
	data, err := algorithm.Narrow[*dataset.ObjectRankingDataset](e.Tag(), ds)
	if err != nil {
		return nil, err
	}
	regression, err := Transform(data)
	if err != nil {
		return nil, err
	}

	learner, err := registry.New(cfg.BaseLearner, e.Options()...)
	if err != nil {
		return nil, err
	}
	if err := learner.SetParameterMap(cfg.BaseLearnerParameters); err != nil {
		return nil, err
	}
	e.Logger().Debug("Delegating to base learner",
		"base_learner", cfg.BaseLearner,
		log.SamplesKey, regression.NumberOfInstances(),
	)

	trained, err := learner.Train(regression)
	if err != nil {
		return nil, err
	}
	base, ok := trained.(model.BaselearnerModel)
	if !ok {
		return nil, errors.Newf("%s: base learner %q produced %T", e.Tag(), cfg.BaseLearner, trained)
	}

	header := data.Header()
	return &ExpectedRankModel{
		base:         base,
		contextDims:  header.ContextDimensions,
		itemFeatures: header.ItemFeatures,
	}, nil
}

// Transform turns every ranked item of every instance into one regression
// instance. Its features are the context followed by the item features and
// its rating is position/(n+1), position being 1-indexed and n the ranking
// length. Repeated items keep one observation per appearance.
func Transform(ds *dataset.ObjectRankingDataset) (*dataset.BaselearnerDataset, error) {
	if ds.NumberOfInstances() == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	header := ds.Header()
	out := dataset.NewBaselearnerDataset(header.ContextDimensions + header.ItemDimensions)
	for _, inst := range ds.Instances() {
		n := float64(inst.Ranking.Len())
		for pos, item := range inst.Ranking.Objects {
			err := out.AddInstance(dataset.BaselearnerInstance{
				Context: joinFeatures(inst.Context, header.ItemFeatures[item]),
				Rating:  float64(pos+1) / (n + 1),
			})
			if err != nil {
				return nil, err
			}
		}
	}
	out.Seal()
	return out, nil
}

func joinFeatures(context, item []float64) []float64 {
	out := make([]float64, 0, len(context)+len(item))
	out = append(out, context...)
	return append(out, item...)
}

// ExpectedRankModel ranks candidate items by ascending predicted expected
// rank. Equal predictions are ordered by ascending item id.
type ExpectedRankModel struct {
	base         model.BaselearnerModel
	contextDims  int
	itemFeatures [][]float64
}

func (m *ExpectedRankModel) Name() string { return "ExpectedRankModel" }

// FeatureDimensions is the context dimensionality.
func (m *ExpectedRankModel) FeatureDimensions() int { return m.contextDims }

// BaseModel returns the trained regression model.
func (m *ExpectedRankModel) BaseModel() model.BaselearnerModel { return m.base }

// PredictRanking orders candidates for context. Every candidate must be a
// known item and appear once.
func (m *ExpectedRankModel) PredictRanking(context []float64, candidates []int) (*ranking.Ranking, error) {
	if err := model.CheckDimensions(m, "ExpectedRankModel.PredictRanking", len(context)); err != nil {
		return nil, err
	}
	scores := make(map[int]float64, len(candidates))
	for _, item := range candidates {
		if item < 0 || item >= len(m.itemFeatures) {
			return nil, errors.NewPredictionFailedError(m.Name(), fmt.Sprintf("unknown item %d", item),
				errors.NewIndexOutOfRangeError("ExpectedRankModel.PredictRanking", item, len(m.itemFeatures)))
		}
		if _, dup := scores[item]; dup {
			return nil, errors.NewPredictionFailedError(m.Name(), fmt.Sprintf("duplicate candidate %d", item), nil)
		}
		score, err := m.base.Predict(dataset.BaselearnerInstance{Context: joinFeatures(context, m.itemFeatures[item])})
		if err != nil {
			return nil, errors.NewPredictionFailedError(m.Name(), "base model prediction failed", err)
		}
		scores[item] = score
	}

	order := append([]int(nil), candidates...)
	sort.Slice(order, func(i, j int) bool {
		si, sj := scores[order[i]], scores[order[j]]
		if si != sj {
			return si < sj
		}
		return order[i] < order[j]
	})
	return ranking.NewLinear(order...), nil
}

// PredictDataset re-ranks the items of every instance of ds.
func (m *ExpectedRankModel) PredictDataset(ds *dataset.ObjectRankingDataset) ([]*ranking.Ranking, error) {
	return model.PredictAll(ds.Instances(), func(inst dataset.ObjectRankingInstance) (*ranking.Ranking, error) {
		return m.PredictRanking(inst.Context, inst.Ranking.Objects)
	})
}
