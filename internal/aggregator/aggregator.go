package aggregator

import "github.com/Maryorwahmi/smc-forez/internal/models"

// Aggregate combines per-timeframe candidates into the final
// Recommendation, per spec.md §4.5. marketBias comes from the Bias
// Filter (C6) and is carried through onto the Recommendation for the
// Quality Filter (C7) to check alignment against.
func Aggregate(perTF []models.TFConfluence, marketBias models.MarketBias, cfg Config) models.Recommendation {
	weightOf, priorityOf := weightIndex(cfg.Weights)

	trend, alignment := weightedTrend(perTF, weightOf)
	dominant, confluenceCount, perTFScores := signalConfluence(perTF)

	entryTF, entryFound, entryCandidate := selectEntryTimeframe(perTF, dominant, priorityOf)

	action := dominant
	if confluenceCount == 0 {
		action = models.Wait
	}

	aligned := trendMatchesAction(trend, action)

	confidenceScore := clamp01(
		0.3*boolToF(aligned) +
			0.3*clamp01(alignment) +
			0.2*boolToF(entryFound) +
			0.05*float64(confluenceCount),
	)

	if !validateAgainstTrend(trend, action, entryCandidate, confluenceCount, confidenceScore, cfg) {
		action = models.Wait
	}

	rec := models.Recommendation{
		Action:          action,
		ConfidenceScore: confidenceScore,
		Confidence:      confidenceLabel(confidenceScore),
		MarketBias:      marketBias,
		TrendDirection:  trend,
		TrendAligned:    aligned,
		SignalConfluence: models.SignalConfluence{
			Dominant:        dominant,
			ConfluenceCount: confluenceCount,
			PerTimeframe:    perTFScores,
		},
		StrengthFactors: strengthFactors(entryCandidate),
	}

	if entryFound {
		rec.EntryTimeframe = entryTF
		rec.EntryDetails = entryCandidate
	}

	return rec
}

func weightIndex(weights []TFWeight) (map[models.Timeframe]float64, map[models.Timeframe]float64) {
	w := make(map[models.Timeframe]float64, len(weights))
	p := make(map[models.Timeframe]float64, len(weights))
	for _, tw := range weights {
		w[tw.Timeframe] = tw.Weight
		p[tw.Timeframe] = tw.Priority
	}
	return w, p
}

// weightedTrend sums each timeframe's weight into the bullish or bearish
// bucket by its candidate's local direction, and classifies the overall
// trend against the spec's 0.5 thresholds.
func weightedTrend(perTF []models.TFConfluence, weightOf map[models.Timeframe]float64) (models.TrendDirection, float64) {
	var bullish, bearish float64
	for _, tf := range perTF {
		w := weightOf[tf.Timeframe]
		switch tf.Candidate.SignalDirection {
		case models.DirBullish:
			bullish += w
		case models.DirBearish:
			bearish += w
		}
	}

	switch {
	case bullish >= 0.5 && bullish > bearish:
		return models.Uptrend, bullish
	case bearish >= 0.5 && bearish > bullish:
		return models.Downtrend, bearish
	default:
		m := bullish
		if bearish > m {
			m = bearish
		}
		return models.Consolidation, m
	}
}

// signalConfluence weights each TF candidate by (priority x strength),
// picks the dominant non-Wait signal type, and counts matching TFs.
func signalConfluence(perTF []models.TFConfluence) (models.SignalType, int, map[models.Timeframe]int) {
	var buyWeight, sellWeight float64
	perTFScores := make(map[models.Timeframe]int, len(perTF))

	for _, tf := range perTF {
		perTFScores[tf.Timeframe] = tf.Candidate.ConfluenceScore
		weighted := tf.Priority * float64(tf.Candidate.Strength+1)
		switch tf.Candidate.SignalType {
		case models.Buy:
			buyWeight += weighted
		case models.Sell:
			sellWeight += weighted
		}
	}

	dominant := models.Wait
	switch {
	case buyWeight > 0 && buyWeight >= sellWeight:
		dominant = models.Buy
	case sellWeight > 0:
		dominant = models.Sell
	}

	count := 0
	if dominant != models.Wait {
		for _, tf := range perTF {
			if tf.Candidate.SignalType == dominant {
				count++
			}
		}
	}

	return dominant, count, perTFScores
}

// selectEntryTimeframe picks, among TFs whose candidate matches the
// dominant signal and whose confluence_score >= 3, the lowest-priority
// (finest) timeframe, breaking ties by higher confluence then better R:R.
func selectEntryTimeframe(perTF []models.TFConfluence, dominant models.SignalType, priorityOf map[models.Timeframe]float64) (models.Timeframe, bool, models.Candidate) {
	var best models.TFConfluence
	found := false

	for _, tf := range perTF {
		if tf.Candidate.SignalType != dominant || dominant == models.Wait {
			continue
		}
		if tf.Candidate.ConfluenceScore < 3 {
			continue
		}

		if !found {
			best, found = tf, true
			continue
		}

		bestPriority := priorityOf[best.Timeframe]
		curPriority := priorityOf[tf.Timeframe]
		switch {
		case curPriority < bestPriority:
			best = tf
		case curPriority == bestPriority:
			if tf.Candidate.ConfluenceScore > best.Candidate.ConfluenceScore {
				best = tf
			} else if tf.Candidate.ConfluenceScore == best.Candidate.ConfluenceScore && tf.Candidate.RRRatio > best.Candidate.RRRatio {
				best = tf
			}
		}
	}

	if !found {
		return "", false, models.Candidate{}
	}
	return best.Timeframe, true, best.Candidate
}

func trendMatchesAction(trend models.TrendDirection, action models.SignalType) bool {
	return (trend == models.Uptrend && action == models.Buy) ||
		(trend == models.Downtrend && action == models.Sell)
}

// validateAgainstTrend applies spec.md's trend-signal validation rules:
// block counter-trend breakouts, allow counter-trend pullbacks only with
// enough confluence, and require extra confirmation in consolidation.
func validateAgainstTrend(trend models.TrendDirection, action models.SignalType, entry models.Candidate, confluenceCount int, confidenceScore float64, cfg Config) bool {
	if action == models.Wait {
		return true
	}

	switch trend {
	case models.Uptrend:
		if action == models.Sell {
			return counterTrendAllowed(entry, confluenceCount, cfg)
		}
	case models.Downtrend:
		if action == models.Buy {
			return counterTrendAllowed(entry, confluenceCount, cfg)
		}
	case models.Consolidation:
		return confluenceCount >= cfg.ConsolidationMinCount || confidenceScore >= cfg.ConsolidationMinConfidence
	}

	return true
}

// counterTrendAllowed blocks a breakout-type counter-trend entry
// outright, and allows a pullback-type one only with enough confluence.
func counterTrendAllowed(entry models.Candidate, confluenceCount int, cfg Config) bool {
	if isBreakoutSetup(entry) {
		return false
	}
	min := cfg.PullbackMinCount
	if isWeakSetup(entry) {
		min = cfg.WeakPullbackMinCount
	}
	return confluenceCount >= min
}

func isBreakoutSetup(c models.Candidate) bool {
	for _, f := range c.ConfluenceFactors {
		if f.Factor == "bos_confirmation" {
			return true
		}
	}
	return false
}

func isWeakSetup(c models.Candidate) bool {
	return c.Strength <= models.Weak
}

func strengthFactors(c models.Candidate) []string {
	factors := make([]string, 0, len(c.ConfluenceFactors))
	for _, f := range c.ConfluenceFactors {
		factors = append(factors, f.Factor)
	}
	return factors
}

func confidenceLabel(score float64) models.ConfidenceLabel {
	switch {
	case score >= 0.8:
		return models.ConfidenceHigh
	case score >= 0.6:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func boolToF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
