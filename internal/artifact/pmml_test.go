package artifact

import (
	"testing"

	"github.com/Dan9191/loan-approval/internal/classifier"
	"github.com/Dan9191/loan-approval/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleTree = `<?xml version="1.0"?>
<PMML xmlns="http://www.dmg.org/PMML-4_4" version="4.4">
  <TreeModel functionName="classification">
    <Node>
      <True/>
      <Node>
        <SimplePredicate field="credit_score" operator="lessOrEqual" value="0.5"/>
        <ScoreDistribution value="0" probability="0.75"/>
        <ScoreDistribution value="1" probability="0.25"/>
      </Node>
      <Node>
        <True/>
        <ScoreDistribution value="1" recordCount="3"/>
      </Node>
    </Node>
  </TreeModel>
</PMML>`

func TestParsePMML_SingleTree(t *testing.T) {
	forest, err := ParsePMML([]byte(singleTree), features.Names())
	require.NoError(t, err)

	require.Len(t, forest.Trees, 1)
	assert.Equal(t, []classifier.Node{
		{Feature: 3, Threshold: 0.5, Left: 1, Right: 2},
		{Value: []float64{0.75, 0.25}},
		{Value: []float64{0, 3}},
	}, forest.Trees[0].Nodes)

	c, err := classifier.New(forest, features.Arity)
	require.NoError(t, err)
	p, err := c.Predict([]float64{30, 50000, 0, 0.4, 0, 0})
	require.NoError(t, err)
	assert.False(t, p.Approved)
	assert.Equal(t, 0.25, p.Probability)
}

func TestParsePMML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", `{"model": 1}`},
		{"wrong root", `<Model/>`},
		{"no models", `<PMML/>`},
		{"no segmentation", `<PMML><MiningModel functionName="classification"/></PMML>`},
		{"majority vote", `<PMML><MiningModel><Segmentation multipleModelMethod="majorityVote"/></MiningModel></PMML>`},
		{"regression", `<PMML><TreeModel functionName="regression"><Node><ScoreDistribution value="1" recordCount="1"/></Node></TreeModel></PMML>`},
		{"unknown field", `<PMML><TreeModel functionName="classification"><Node>
			<Node><SimplePredicate field="zip" operator="lessOrEqual" value="1"/><ScoreDistribution value="1" recordCount="1"/></Node>
			<Node><True/><ScoreDistribution value="0" recordCount="1"/></Node></Node></TreeModel></PMML>`},
		{"unsupported operator", `<PMML><TreeModel functionName="classification"><Node>
			<Node><SimplePredicate field="age" operator="equal" value="1"/><ScoreDistribution value="1" recordCount="1"/></Node>
			<Node><True/><ScoreDistribution value="0" recordCount="1"/></Node></Node></TreeModel></PMML>`},
		{"mismatched sibling", `<PMML><TreeModel functionName="classification"><Node>
			<Node><SimplePredicate field="age" operator="lessOrEqual" value="30"/><ScoreDistribution value="1" recordCount="1"/></Node>
			<Node><SimplePredicate field="age" operator="greaterThan" value="31"/><ScoreDistribution value="0" recordCount="1"/></Node></Node></TreeModel></PMML>`},
		{"three children", `<PMML><TreeModel functionName="classification"><Node>
			<Node><SimplePredicate field="age" operator="lessOrEqual" value="30"/><ScoreDistribution value="1" recordCount="1"/></Node>
			<Node><True/><ScoreDistribution value="0" recordCount="1"/></Node>
			<Node><True/><ScoreDistribution value="0" recordCount="1"/></Node></Node></TreeModel></PMML>`},
		{"unknown class", `<PMML><TreeModel functionName="classification"><Node><ScoreDistribution value="2" recordCount="1"/></Node></TreeModel></PMML>`},
		{"no distribution", `<PMML><TreeModel functionName="classification"><Node/></TreeModel></PMML>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePMML([]byte(tt.doc), features.Names())
			assert.Error(t, err)
		})
	}
}
