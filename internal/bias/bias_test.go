package bias

import (
	"testing"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	require.Equal(t, models.BiasBullish, Classify(models.Uptrend, models.Uptrend))
	require.Equal(t, models.BiasNeutral, Classify(models.Uptrend, models.Consolidation))
	require.Equal(t, models.BiasConflict, Classify(models.Uptrend, models.Downtrend))
	require.Equal(t, models.BiasBearish, Classify(models.Downtrend, models.Downtrend))
	require.Equal(t, models.BiasNeutral, Classify(models.Consolidation, models.Uptrend))
}

func TestCanExecuteTradeRequiresStrictAlignment(t *testing.T) {
	require.True(t, CanExecuteTrade(models.DirBullish, models.BiasBullish))
	require.False(t, CanExecuteTrade(models.DirBullish, models.BiasNeutral))
	require.False(t, CanExecuteTrade(models.DirBullish, models.BiasConflict))
}

func TestAssessSignalConfidenceLadder(t *testing.T) {
	a := AssessSignalConfidence(models.DirBullish, models.BiasBullish, 0, 0)
	require.Equal(t, Execute, a.Confidence)
	require.Equal(t, 1.0, a.Score)

	a = AssessSignalConfidence(models.DirBullish, models.BiasNeutral, 3, 30)
	require.Equal(t, Execute, a.Confidence)
	require.Equal(t, 0.9, a.Score)

	a = AssessSignalConfidence(models.DirBullish, models.BiasNeutral, 2, 20)
	require.Equal(t, Execute, a.Confidence)
	require.Equal(t, 0.7, a.Score)

	a = AssessSignalConfidence(models.DirBullish, models.BiasNeutral, 1, 5)
	require.Equal(t, LowConfidence, a.Confidence)

	a = AssessSignalConfidence(models.DirBullish, models.BiasNeutral, 0, 0)
	require.Equal(t, ConfidenceWait, a.Confidence)
}
