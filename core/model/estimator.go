// Package model は学習済みモデルの契約を定義します。
//
// モデルは Train の成功ごとに一度だけ生成され、生成後は不変です。
// 学習時の特徴次元を保持し、互換性のないインスタンスを予測時に拒否します。
package model

import (
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/parallel"
	"github.com/YuminosukeSato/preflearn/core/ranking"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// LearningModel は全ての学習済みモデルの共通インターフェース
type LearningModel interface {
	// Name はモデルの種類名を返す
	Name() string
	// FeatureDimensions は学習時の特徴次元を返す
	FeatureDimensions() int
}

// BaselearnerModel はスカラー評価値を予測するモデル（回帰・分類）
type BaselearnerModel interface {
	LearningModel

	// Predict は1インスタンスの評価値を予測する
	Predict(inst dataset.BaselearnerInstance) (float64, error)
	// PredictDataset はデータセット全体の評価値を順に予測する
	PredictDataset(ds *dataset.BaselearnerDataset) ([]float64, error)
	// Bias は切片を返す。対応しないモデルは UnsupportedOperationError を返す
	Bias() (float64, error)
	// WeightVector は重みベクトルを返す。対応しないモデルは UnsupportedOperationError を返す
	WeightVector() ([]float64, error)
}

// ObjectRankingModel は文脈ごとに候補アイテムを順位付けするモデル
type ObjectRankingModel interface {
	LearningModel

	// PredictRanking は context に対する candidates の順位を返す
	PredictRanking(context []float64, candidates []int) (*ranking.Ranking, error)
	// PredictDataset は各インスタンスのランキングに含まれるアイテムを順位付けし直す
	PredictDataset(ds *dataset.ObjectRankingDataset) ([]*ranking.Ranking, error)
}

// AggregationModel はランキング集約の結果を保持するモデル
type AggregationModel interface {
	LearningModel

	// Consensus は全ラベル上の集約ランキングを返す
	Consensus() *ranking.Ranking
	// PredictRanking は集約ランキングを inst のラベルに制限して返す
	PredictRanking(inst dataset.RankAggregationInstance) (*ranking.Ranking, error)
}

// CheckDimensions は特徴次元の一致を確認し、不一致なら PredictionFailedError を返す
func CheckDimensions(m LearningModel, op string, got int) error {
	if got != m.FeatureDimensions() {
		return errors.NewPredictionFailedError(m.Name(), "incompatible instance",
			errors.NewDimensionError(op, m.FeatureDimensions(), got, 1))
	}
	return nil
}

// predictThreshold を超えるとインスタンスを並列に予測する
const predictThreshold = 1000

// PredictAll は items を予測し、入力順に結果を返す。
// エラーは最も小さいインデックスのものを返す
func PredictAll[T, P any](items []T, predict func(T) (P, error)) ([]P, error) {
	return parallel.Map(items, predictThreshold, predict)
}
