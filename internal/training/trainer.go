// Package training fits phishing classifiers from labelled datasets and
// reports how well they generalize.
package training

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/features"
	"github.com/mikey/phish-detector/internal/forest"
	"github.com/mikey/phish-detector/internal/model"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Options controls a training run
type Options struct {
	MaxFeatures int
	TestSize    float64
	CVFolds     int
	Forest      forest.Params
}

// OptionsFromConfig builds training options from the training configuration
func OptionsFromConfig(cfg config.TrainingConfig) Options {
	params := forest.DefaultParams()
	params.Trees = cfg.Trees
	params.MaxDepth = cfg.MaxDepth
	params.MinSamplesSplit = cfg.MinSamplesSplit
	params.Seed = cfg.Seed
	return Options{
		MaxFeatures: cfg.MaxFeatures,
		TestSize:    cfg.TestSize,
		CVFolds:     cfg.CVFolds,
		Forest:      params,
	}
}

// Report describes the outcome of a training run
type Report struct {
	Samples      int           `json:"samples"`
	TrainSamples int           `json:"train_samples"`
	TestSamples  int           `json:"test_samples"`
	Features     int           `json:"features"`
	Test         Evaluation    `json:"test"`
	CVScores     []float64     `json:"cv_scores"`
	CVMean       float64       `json:"cv_mean"`
	CVStd        float64       `json:"cv_std"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Trainer fits the feature pipeline and forest
type Trainer struct {
	opts   Options
	logger *zap.Logger
}

// NewTrainer creates a new trainer
func NewTrainer(opts Options, logger *zap.Logger) *Trainer {
	return &Trainer{opts: opts, logger: logger}
}

// Train splits the dataset into stratified train and test portions, fits a
// model on the training portion, evaluates it on the held-out samples and
// cross-validates on the training portion
func (t *Trainer) Train(ctx context.Context, d Dataset) (*model.Model, *Report, error) {
	start := time.Now()
	if err := d.validate(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if t.opts.TestSize <= 0 || t.opts.TestSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", t.opts.TestSize)
	}

	rng := rand.New(rand.NewSource(t.opts.Forest.Seed))
	trainIdx, testIdx := stratifiedSplit(d, t.opts.TestSize, rng)
	train, test := subset(d, trainIdx), subset(d, testIdx)

	t.logger.Info("Training model",
		zap.Int("samples", len(d)),
		zap.Int("train", len(train)),
		zap.Int("test", len(test)),
		zap.Int("trees", t.opts.Forest.Trees))

	m, err := t.fit(train)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{
		Samples:      len(d),
		TrainSamples: len(train),
		TestSamples:  len(test),
		Features:     m.Schema().Len(),
	}
	report.Test, err = evaluate(m, test)
	if err != nil {
		return nil, nil, err
	}
	t.logger.Info("Model evaluated", zap.Float64("accuracy", report.Test.Accuracy))

	if t.opts.CVFolds >= 2 {
		report.CVScores, err = t.crossValidate(ctx, train, rng)
		if err != nil {
			return nil, nil, err
		}
		report.CVMean, report.CVStd = stat.PopMeanStdDev(report.CVScores, nil)
		t.logger.Info("Cross-validation completed",
			zap.Float64s("scores", report.CVScores),
			zap.Float64("mean", report.CVMean))
	}
	report.Elapsed = time.Since(start)

	trainedAt := time.Now().UTC()
	meta := model.Metadata{
		Version:      "rf-" + trainedAt.Format("20060102T150405Z"),
		TrainedAt:    trainedAt,
		Samples:      len(train),
		TestAccuracy: report.Test.Accuracy,
		CVMean:       report.CVMean,
		CVStd:        report.CVStd,
		Params:       t.opts.Forest,
	}
	m, err = m.WithMetadata(meta)
	if err != nil {
		return nil, nil, err
	}
	return m, report, nil
}

// fit builds the vectorizer, scaler and forest from the given samples
func (t *Trainer) fit(d Dataset) (*model.Model, error) {
	docs := make([][]string, len(d))
	labels := make([]int, len(d))
	for i, s := range d {
		docs[i] = features.Terms(features.StripHTML(s.Text))
		labels[i] = s.Label
	}
	vectorizer := features.FitVectorizer(docs, t.opts.MaxFeatures)
	extractor := features.NewExtractor(vectorizer)

	x := make([][]float64, len(d))
	for i, s := range d {
		x[i] = extractor.Extract(s.Text).Values()
	}
	scaler, err := model.FitScaler(x)
	if err != nil {
		return nil, err
	}
	f, err := forest.Fit(scaler.TransformAll(x), labels, 2, t.opts.Forest)
	if err != nil {
		return nil, fmt.Errorf("failed to fit forest: %w", err)
	}
	return model.New(vectorizer, scaler, f, model.Metadata{Params: t.opts.Forest})
}

// crossValidate refits the whole pipeline on k-1 stratified folds and
// scores accuracy on the remaining one
func (t *Trainer) crossValidate(ctx context.Context, d Dataset, rng *rand.Rand) ([]float64, error) {
	folds := stratifiedFolds(d, t.opts.CVFolds, rng)
	scores := make([]float64, 0, len(folds))
	for k, held := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inFold := make(map[int]bool, len(held))
		for _, i := range held {
			inFold[i] = true
		}
		var rest []int
		for i := range d {
			if !inFold[i] {
				rest = append(rest, i)
			}
		}

		m, err := t.fit(subset(d, rest))
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", k, err)
		}
		e, err := evaluate(m, subset(d, held))
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", k, err)
		}
		scores = append(scores, e.Accuracy)
	}
	return scores, nil
}

func evaluate(m *model.Model, d Dataset) (Evaluation, error) {
	truth := make([]int, len(d))
	predicted := make([]int, len(d))
	for i, s := range d {
		r, err := m.Predict(m.Extract(s.Text))
		if err != nil {
			return Evaluation{}, err
		}
		truth[i] = s.Label
		if r.IsPhishing {
			predicted[i] = core.ClassPhishing
		} else {
			predicted[i] = core.ClassLegitimate
		}
	}
	return Evaluate(truth, predicted), nil
}

// byClass returns shuffled sample indices grouped by label
func byClass(d Dataset, rng *rand.Rand) [2][]int {
	var groups [2][]int
	for i, s := range d {
		groups[s.Label] = append(groups[s.Label], i)
	}
	for _, g := range groups {
		rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
	}
	return groups
}

// stratifiedSplit holds out testSize of each class, at least one sample
// per class while leaving one for training
func stratifiedSplit(d Dataset, testSize float64, rng *rand.Rand) (train, test []int) {
	for _, g := range byClass(d, rng) {
		n := int(math.Round(float64(len(g)) * testSize))
		if n < 1 {
			n = 1
		}
		if n >= len(g) {
			n = len(g) - 1
		}
		test = append(test, g[:n]...)
		train = append(train, g[n:]...)
	}
	return train, test
}

// stratifiedFolds deals each class round-robin into k folds. Folds that end
// up empty are dropped.
func stratifiedFolds(d Dataset, k int, rng *rand.Rand) [][]int {
	folds := make([][]int, k)
	next := 0
	for _, g := range byClass(d, rng) {
		for _, i := range g {
			folds[next%k] = append(folds[next%k], i)
			next++
		}
	}
	out := folds[:0]
	for _, f := range folds {
		if len(f) > 0 {
			out = append(out, f)
		}
	}
	return out
}

func subset(d Dataset, idx []int) Dataset {
	out := make(Dataset, len(idx))
	for i, j := range idx {
		out[i] = d[j]
	}
	return out
}
