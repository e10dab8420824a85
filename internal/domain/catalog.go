package domain

// Algorithm is a learning algorithm the training service understands.
type Algorithm struct {
	Key   string
	Label string
}

var (
	randomForest       = Algorithm{Key: "random_forest", Label: "Random Forest"}
	gradientBoosting   = Algorithm{Key: "gradient_boosting", Label: "Gradient Boosting"}
	linearRegression   = Algorithm{Key: "linear_regression", Label: "Linear Regression"}
	logisticRegression = Algorithm{Key: "logistic_regression", Label: "Logistic Regression"}
	knn                = Algorithm{Key: "knn", Label: "K-Nearest Neighbors"}
	svm                = Algorithm{Key: "svm", Label: "Support Vector Machine"}
	naiveBayes         = Algorithm{Key: "naive_bayes", Label: "Naive Bayes"}
)

// catalog is ordered; the first entry of each list is the task's default.
var catalog = map[TaskType][]Algorithm{
	Regression:     {randomForest, gradientBoosting, linearRegression, knn, svm},
	Classification: {randomForest, gradientBoosting, logisticRegression, knn, svm, naiveBayes},
}

// Algorithms returns the algorithms allowed for a task, in presentation order.
func Algorithms(task TaskType) []Algorithm {
	algs := catalog[task]
	out := make([]Algorithm, len(algs))
	copy(out, algs)
	return out
}

// DefaultAlgorithm returns the first catalog entry for a task.
func DefaultAlgorithm(task TaskType) string {
	return catalog[task][0].Key
}

// IsAllowed reports whether key belongs to the task's catalog.
func IsAllowed(task TaskType, key string) bool {
	for _, a := range catalog[task] {
		if a.Key == key {
			return true
		}
	}
	return false
}

// AlgorithmLabel returns the display label for key, or key itself when unknown.
func AlgorithmLabel(key string) string {
	for _, algs := range catalog {
		for _, a := range algs {
			if a.Key == key {
				return a.Label
			}
		}
	}
	return key
}
