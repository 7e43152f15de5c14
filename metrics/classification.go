package metrics

// Accuracy は予測ラベルが正解と一致する割合を返す
func Accuracy(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ZeroOneLoss は誤分類の割合（1 - Accuracy）を返す
func ZeroOneLoss(yTrue, yPred []float64) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}
