package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-service/internal/models"
)

func rulesWithEdges(edges map[string]string) map[string]models.ServiceRule {
	rules := make(map[string]models.ServiceRule)
	for name, target := range edges {
		rules[name] = models.ServiceRule{Service: name, SharedCapacityWith: target}
	}
	return rules
}

func TestValidateCapacityGraph_NoEdges(t *testing.T) {
	rules := rulesWithEdges(map[string]string{"Consulta": "", "ECG": ""})
	assert.NoError(t, ValidateCapacityGraph(rules, nil))
}

func TestValidateCapacityGraph_SelfLoopRejected(t *testing.T) {
	rules := rulesWithEdges(map[string]string{"Consulta": "Consulta"})

	err := ValidateCapacityGraph(rules, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "itself")
}

func TestValidateCapacityGraph_DirectTwoCycleNamesBothServices(t *testing.T) {
	rules := rulesWithEdges(map[string]string{
		"Consulta": "ECG",
		"ECG":      "Consulta",
	})

	err := ValidateCapacityGraph(rules, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Consulta")
	assert.Contains(t, err.Error(), "ECG")
}

func TestValidateCapacityGraph_TransitiveCycleRejected(t *testing.T) {
	// A -> B and B -> C are fine; adding C -> A closes the cycle.
	rules := rulesWithEdges(map[string]string{"A": "B", "B": "C", "C": ""})
	require.NoError(t, ValidateCapacityGraph(rules, nil))

	c := rules["C"]
	c.SharedCapacityWith = "A"
	rules["C"] = c

	err := ValidateCapacityGraph(rules, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestValidateCapacityGraph_ChainIsAForest(t *testing.T) {
	rules := rulesWithEdges(map[string]string{"A": "B", "B": "C", "C": "", "D": "C"})
	assert.NoError(t, ValidateCapacityGraph(rules, nil))
}

func TestValidateCapacityGraph_UnknownTargetRejected(t *testing.T) {
	rules := rulesWithEdges(map[string]string{"A": "Ghost"})

	err := ValidateCapacityGraph(rules, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
}

func TestValidateCapacityGraph_SubLimitAboveRootLimitRejected(t *testing.T) {
	sub := 5
	rules := map[string]models.ServiceRule{
		"Consulta": {
			Service: "Consulta",
			Periods: map[models.Period]models.PeriodConfig{
				models.PeriodMorning: {Active: true, PatientLimit: 3},
			},
		},
		"Retorno": {
			Service:            "Retorno",
			SharedCapacityWith: "Consulta",
			OwnSubLimit:        &sub,
		},
	}

	err := ValidateCapacityGraph(rules, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sub-limit")
}

func TestValidateCapacityGraph_SubLimitWithinRootLimitAccepted(t *testing.T) {
	sub := 2
	rules := map[string]models.ServiceRule{
		"Consulta": {
			Service: "Consulta",
			Periods: map[models.Period]models.PeriodConfig{
				models.PeriodMorning: {Active: true, PatientLimit: 3},
			},
		},
		"Retorno": {
			Service:            "Retorno",
			SharedCapacityWith: "Consulta",
			OwnSubLimit:        &sub,
		},
	}

	assert.NoError(t, ValidateCapacityGraph(rules, nil))
}

func TestValidateCapacityGraph_SubLimitAboveInheritRootTemplateLimitRejected(t *testing.T) {
	sub := 5
	rules := map[string]models.ServiceRule{
		"Consulta": {Service: "Consulta", Mode: models.ModeInherit},
		"Retorno": {
			Service:            "Retorno",
			Mode:               models.ModeInherit,
			SharedCapacityWith: "Consulta",
			OwnSubLimit:        &sub,
		},
	}
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}

	err := ValidateCapacityGraph(rules, templates)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sub-limit")
	assert.Contains(t, err.Error(), "Consulta")
}

func TestValidateCapacityGraph_SubLimitWithinInheritRootTemplateLimitAccepted(t *testing.T) {
	sub := 2
	rules := map[string]models.ServiceRule{
		"Consulta": {Service: "Consulta", Mode: models.ModeInherit},
		"Retorno": {
			Service:            "Retorno",
			Mode:               models.ModeInherit,
			SharedCapacityWith: "Consulta",
			OwnSubLimit:        &sub,
		},
	}
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}

	assert.NoError(t, ValidateCapacityGraph(rules, templates))
}

func TestResolvePoolRoot_FollowsChainToTerminal(t *testing.T) {
	rules := rulesWithEdges(map[string]string{"A": "B", "B": "C", "C": ""})

	assert.Equal(t, "C", ResolvePoolRoot(rules, "A"))
	assert.Equal(t, "C", ResolvePoolRoot(rules, "B"))
	assert.Equal(t, "C", ResolvePoolRoot(rules, "C"))
}

func TestResolvePoolRoot_UnknownServiceIsItsOwnRoot(t *testing.T) {
	rules := rulesWithEdges(map[string]string{"A": ""})
	assert.Equal(t, "X", ResolvePoolRoot(rules, "X"))
}
