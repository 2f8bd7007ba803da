package regressor

import (
	"math"

	"golang.org/x/exp/slices"
)

// TreeConfig tunes the incremental regression tree. The defaults follow the
// usual Hoeffding tree literature values and work well for the passenger
// count series.
type TreeConfig struct {
	// GracePeriod is how many instances a leaf accumulates between split
	// attempts.
	GracePeriod int
	// SplitConfidence is the delta of the Hoeffding bound; smaller values
	// demand more evidence before splitting.
	SplitConfidence float64
	// TieThreshold breaks near-ties between the two best candidate splits.
	TieThreshold float64
	// DriftDelta and DriftLambda parameterise the Page-Hinkley test that
	// discards subtrees whose error distribution has drifted.
	DriftDelta  float64
	DriftLambda float64
}

func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		GracePeriod:     200,
		SplitConfidence: 1e-7,
		TieThreshold:    0.05,
		DriftDelta:      0.005,
		DriftLambda:     50,
	}
}

// HoeffdingTree is a single incrementally grown regression tree in the style
// of FIMT-DD. Leaves keep running target statistics plus per-feature
// candidate split statistics; a leaf splits on the feature with the best
// standard deviation reduction once the Hoeffding bound separates it from the
// runner-up. Every node carries a Page-Hinkley detector over its absolute
// prediction error and collapses back to a fresh leaf when it alarms.
//
// Training is fully deterministic: candidate features and thresholds are
// always scanned in sorted order.
type HoeffdingTree struct {
	config      TreeConfig
	schema      Schema
	initialized bool
	root        *treeNode
}

func NewHoeffdingTree(config TreeConfig) *HoeffdingTree {
	return &HoeffdingTree{
		config: config,
	}
}

func (t *HoeffdingTree) Initialize(schema Schema) error {
	if t.initialized {
		return ErrAlreadyInitialized
	}

	t.schema = schema
	t.initialized = true
	t.root = newLeaf(schema.Arity(), t.config)

	return nil
}

func (t *HoeffdingTree) Predict(features []float64) (float64, error) {
	if err := checkFeatures(t.schema, t.initialized, features); err != nil {
		return 0, err
	}

	return t.root.sortedInto(features).target.mean(), nil
}

func (t *HoeffdingTree) Train(features []float64, target float64) error {
	if err := checkFeatures(t.schema, t.initialized, features); err != nil {
		return err
	}

	t.train(t.root, features, target)

	return nil
}

func (t *HoeffdingTree) train(node *treeNode, features []float64, target float64) {
	residual := math.Abs(target - node.sortedInto(features).target.mean())

	if node.drift.update(residual) {
		// The error distribution under this node has shifted; growing the
		// existing structure further would chase a stale concept.
		node.becomeLeaf(t.schema.Arity(), t.config)
	}

	if !node.leaf {
		t.train(node.childFor(features), features, target)
		return
	}

	node.learn(features, target)

	if node.sinceSplitAttempt >= t.config.GracePeriod {
		node.attemptSplit(t.config)
	}
}

type treeNode struct {
	leaf bool

	// split node
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	// leaf statistics: running target moments plus, per feature, target
	// moments for every observed feature value. The model inputs are small
	// integer domains (hour, minute, weekday...) so exact value bins stay
	// cheap.
	target            targetStats
	observed          []map[float64]*targetStats
	sinceSplitAttempt int

	drift pageHinkley
}

func newLeaf(arity int, config TreeConfig) *treeNode {
	node := &treeNode{
		leaf: true,
		drift: pageHinkley{
			delta:  config.DriftDelta,
			lambda: config.DriftLambda,
		},
	}
	node.resetObserved(arity)

	return node
}

func (n *treeNode) resetObserved(arity int) {
	n.observed = make([]map[float64]*targetStats, arity)
	for feature := range n.observed {
		n.observed[feature] = map[float64]*targetStats{}
	}
}

func (n *treeNode) becomeLeaf(arity int, config TreeConfig) {
	n.leaf = true
	n.left = nil
	n.right = nil
	n.target = targetStats{}
	n.sinceSplitAttempt = 0
	n.resetObserved(arity)
	n.drift = pageHinkley{
		delta:  config.DriftDelta,
		lambda: config.DriftLambda,
	}
}

func (n *treeNode) childFor(features []float64) *treeNode {
	if features[n.feature] <= n.threshold {
		return n.left
	}

	return n.right
}

// sortedInto returns the leaf this feature vector currently routes to.
func (n *treeNode) sortedInto(features []float64) *treeNode {
	node := n
	for !node.leaf {
		node = node.childFor(features)
	}

	return node
}

func (n *treeNode) learn(features []float64, target float64) {
	n.target.add(target)

	for feature, value := range features {
		stats := n.observed[feature][value]
		if stats == nil {
			stats = &targetStats{}
			n.observed[feature][value] = stats
		}
		stats.add(target)
	}

	n.sinceSplitAttempt += 1
}

type candidateSplit struct {
	feature   int
	threshold float64
	merit     float64
	left      targetStats
	right     targetStats
}

func (n *treeNode) attemptSplit(config TreeConfig) {
	n.sinceSplitAttempt = 0

	best, second := n.bestSplits()
	if best == nil || best.merit <= 0 {
		return
	}

	// Hoeffding bound over the merit ratio of the two best candidates,
	// which lives in [0, 1].
	epsilon := math.Sqrt(math.Log(1/config.SplitConfidence) / (2 * n.target.count))

	ratio := 0.0
	if second != nil {
		ratio = second.merit / best.merit
	}

	if ratio < 1-epsilon || epsilon < config.TieThreshold {
		n.split(best, config)
	}
}

func (n *treeNode) split(candidate *candidateSplit, config TreeConfig) {
	arity := len(n.observed)

	n.leaf = false
	n.feature = candidate.feature
	n.threshold = candidate.threshold

	// Children inherit the target moments of their partition so predictions
	// stay continuous across the split.
	n.left = newLeaf(arity, config)
	n.left.target = candidate.left
	n.right = newLeaf(arity, config)
	n.right.target = candidate.right

	n.observed = nil
}

// bestSplits scores every candidate binary split by standard deviation
// reduction and returns the best and second best.
func (n *treeNode) bestSplits() (*candidateSplit, *candidateSplit) {
	var best *candidateSplit
	var second *candidateSplit

	totalSD := n.target.standardDeviation()
	totalCount := n.target.count

	for feature, valueStats := range n.observed {
		values := make([]float64, 0, len(valueStats))
		for value := range valueStats {
			values = append(values, value)
		}
		slices.Sort(values)

		var left targetStats
		for _, value := range values[:max(len(values)-1, 0)] {
			left.merge(*valueStats[value])
			right := n.target.minus(left)

			merit := totalSD -
				(left.count/totalCount)*left.standardDeviation() -
				(right.count/totalCount)*right.standardDeviation()

			candidate := &candidateSplit{
				feature:   feature,
				threshold: value,
				merit:     merit,
				left:      left,
				right:     right,
			}

			switch {
			case best == nil || candidate.merit > best.merit:
				second = best
				best = candidate
			case second == nil || candidate.merit > second.merit:
				second = candidate
			}
		}
	}

	return best, second
}

type targetStats struct {
	count      float64
	sum        float64
	sumSquares float64
}

func (s *targetStats) add(value float64) {
	s.count += 1
	s.sum += value
	s.sumSquares += value * value
}

func (s *targetStats) merge(other targetStats) {
	s.count += other.count
	s.sum += other.sum
	s.sumSquares += other.sumSquares
}

func (s targetStats) minus(other targetStats) targetStats {
	return targetStats{
		count:      s.count - other.count,
		sum:        s.sum - other.sum,
		sumSquares: s.sumSquares - other.sumSquares,
	}
}

func (s targetStats) mean() float64 {
	if s.count == 0 {
		return 0
	}

	return s.sum / s.count
}

func (s targetStats) standardDeviation() float64 {
	if s.count == 0 {
		return 0
	}

	variance := s.sumSquares/s.count - s.mean()*s.mean()
	if variance < 0 {
		variance = 0
	}

	return math.Sqrt(variance)
}

// pageHinkley is a one-sided Page-Hinkley change detector over a stream of
// absolute errors.
type pageHinkley struct {
	delta  float64
	lambda float64

	count      float64
	mean       float64
	cumulative float64
	minimum    float64
}

const driftMinInstances = 30

func (ph *pageHinkley) update(value float64) bool {
	ph.count += 1
	ph.mean += (value - ph.mean) / ph.count
	ph.cumulative += value - ph.mean - ph.delta

	if ph.cumulative < ph.minimum {
		ph.minimum = ph.cumulative
	}

	if ph.count < driftMinInstances {
		return false
	}

	return ph.cumulative-ph.minimum > ph.lambda
}
