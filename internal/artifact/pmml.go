package artifact

import (
	"fmt"
	"strconv"

	"github.com/Dan9191/loan-approval/internal/classifier"
	"github.com/beevik/etree"
)

// ParsePMML converts a PMML tree ensemble into a forest.
// Supported documents hold a MiningModel averaging TreeModel segments, or a single TreeModel,
// with binary splits expressed as a lessOrEqual SimplePredicate on the left child.
func ParsePMML(raw []byte, featureNames []string) (*classifier.Forest, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "PMML" {
		return nil, fmt.Errorf("document root is not PMML")
	}

	index := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		index[name] = i
	}

	var trees []*etree.Element
	if mining := root.SelectElement("MiningModel"); mining != nil {
		seg := mining.SelectElement("Segmentation")
		if seg == nil {
			return nil, fmt.Errorf("MiningModel has no Segmentation")
		}
		if method := seg.SelectAttrValue("multipleModelMethod", ""); method != "average" {
			return nil, fmt.Errorf("unsupported multipleModelMethod %q", method)
		}
		for _, s := range seg.SelectElements("Segment") {
			tm := s.SelectElement("TreeModel")
			if tm == nil {
				return nil, fmt.Errorf("segment %s has no TreeModel", s.SelectAttrValue("id", "?"))
			}
			trees = append(trees, tm)
		}
	} else if tm := root.SelectElement("TreeModel"); tm != nil {
		trees = append(trees, tm)
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("no tree models found")
	}

	forest := &classifier.Forest{
		NFeatures: len(featureNames),
		Classes:   []int{0, 1},
	}
	for i, tm := range trees {
		if fn := tm.SelectAttrValue("functionName", ""); fn != "classification" {
			return nil, fmt.Errorf("tree %d: functionName %q is not classification", i, fn)
		}
		top := tm.SelectElement("Node")
		if top == nil {
			return nil, fmt.Errorf("tree %d has no root node", i)
		}
		b := &treeBuilder{index: index}
		if _, err := b.node(top); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		forest.Trees = append(forest.Trees, classifier.Tree{Nodes: b.nodes})
	}
	return forest, nil
}

type treeBuilder struct {
	index map[string]int
	nodes []classifier.Node
}

// node appends el and its subtree in pre-order and returns its position
func (b *treeBuilder) node(el *etree.Element) (int, error) {
	pos := len(b.nodes)
	b.nodes = append(b.nodes, classifier.Node{})

	children := el.SelectElements("Node")
	if len(children) == 0 {
		value, err := scoreDistribution(el)
		if err != nil {
			return 0, err
		}
		b.nodes[pos].Value = value
		return pos, nil
	}
	if len(children) != 2 {
		return 0, fmt.Errorf("node has %d children, want 2", len(children))
	}

	feature, threshold, err := b.leftPredicate(children[0])
	if err != nil {
		return 0, err
	}
	if err := b.checkRightPredicate(children[1], feature, threshold); err != nil {
		return 0, err
	}

	left, err := b.node(children[0])
	if err != nil {
		return 0, err
	}
	right, err := b.node(children[1])
	if err != nil {
		return 0, err
	}
	b.nodes[pos] = classifier.Node{Feature: feature, Threshold: threshold, Left: left, Right: right}
	return pos, nil
}

func (b *treeBuilder) leftPredicate(el *etree.Element) (int, float64, error) {
	p := el.SelectElement("SimplePredicate")
	if p == nil {
		return 0, 0, fmt.Errorf("left child has no SimplePredicate")
	}
	if op := p.SelectAttrValue("operator", ""); op != "lessOrEqual" {
		return 0, 0, fmt.Errorf("unsupported left operator %q", op)
	}
	return b.predicateOperands(p)
}

func (b *treeBuilder) checkRightPredicate(el *etree.Element, feature int, threshold float64) error {
	if el.SelectElement("True") != nil {
		return nil
	}
	p := el.SelectElement("SimplePredicate")
	if p == nil {
		return fmt.Errorf("right child has no predicate")
	}
	if op := p.SelectAttrValue("operator", ""); op != "greaterThan" {
		return fmt.Errorf("unsupported right operator %q", op)
	}
	f, t, err := b.predicateOperands(p)
	if err != nil {
		return err
	}
	if f != feature || t != threshold {
		return fmt.Errorf("right predicate does not complement left predicate")
	}
	return nil
}

func (b *treeBuilder) predicateOperands(p *etree.Element) (int, float64, error) {
	field := p.SelectAttrValue("field", "")
	feature, ok := b.index[field]
	if !ok {
		return 0, 0, fmt.Errorf("unknown field %q", field)
	}
	threshold, err := strconv.ParseFloat(p.SelectAttrValue("value", ""), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid threshold for %s: %w", field, err)
	}
	return feature, threshold, nil
}

// scoreDistribution reads class weights from recordCount, falling back to probability
func scoreDistribution(el *etree.Element) ([]float64, error) {
	dists := el.SelectElements("ScoreDistribution")
	if len(dists) == 0 {
		return nil, fmt.Errorf("leaf has no ScoreDistribution")
	}
	value := make([]float64, 2)
	for _, d := range dists {
		var class int
		switch d.SelectAttrValue("value", "") {
		case "0":
			class = 0
		case "1":
			class = 1
		default:
			return nil, fmt.Errorf("unexpected class %q", d.SelectAttrValue("value", ""))
		}

		attr := d.SelectAttrValue("recordCount", "")
		if attr == "" {
			attr = d.SelectAttrValue("probability", "")
		}
		w, err := strconv.ParseFloat(attr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for class %d: %w", class, err)
		}
		value[class] = w
	}
	return value, nil
}
