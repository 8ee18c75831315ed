package gamestat

// SituationWeights are the fantasy point weights for one game situation.
type SituationWeights struct {
	Goal   float64
	Assist float64
	Shot   float64
	Block  float64
}

func (w SituationWeights) Points(goals, assists, shots, blocks float64) float64 {
	return w.Goal*goals + w.Assist*assists + w.Shot*shots + w.Block*blocks
}

// ScoringRules stores the fantasy scoring system for skaters and goalies.
type ScoringRules struct {
	Even        SituationWeights
	PowerPlay   SituationWeights
	PenaltyKill SituationWeights

	Save        float64
	GoalAgainst float64
	Win         float64
	Shutout     float64
}

func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		Even:        SituationWeights{Goal: 12, Assist: 8, Shot: 1.6, Block: 1.6},
		PowerPlay:   SituationWeights{Goal: 12.5, Assist: 8.5, Shot: 1.6, Block: 1.6},
		PenaltyKill: SituationWeights{Goal: 14, Assist: 10, Shot: 1.6, Block: 1.6},
		Save:        0.8,
		GoalAgainst: -4,
		Win:         12,
		Shutout:     8,
	}
}

func (r ScoringRules) Weights(situation Situation) SituationWeights {
	switch situation {
	case SituationPowerPlay:
		return r.PowerPlay
	case SituationPenaltyKill:
		return r.PenaltyKill
	default:
		return r.Even
	}
}

func (r ScoringRules) GoaliePoints(saves, goalsAgainst float64, win, shutout bool) float64 {
	points := r.Save*saves + r.GoalAgainst*goalsAgainst
	if win {
		points += r.Win
	}
	if shutout {
		points += r.Shutout
	}
	return points
}

// PerSixty converts a total into a per-60-minute rate. Zero or negative TOI yields 0.
func PerSixty(value, toi float64) float64 {
	if toi <= 0 {
		return 0
	}
	return value / toi * 60
}

// Score fills the derived fantasy point columns of row.
func (r ScoringRules) Score(row *PlayerDayStat) {
	if row.IsGoalie() {
		row.EvFP, row.PpFP, row.PkFP = 0, 0, 0
		row.FP = r.GoaliePoints(row.SV, row.GA, row.W == 1, row.SO == 1)
		row.FPPer60 = PerSixty(row.FP, row.TOI)
		return
	}

	row.EvFP = r.Even.Points(row.EvG, row.EvA, row.EvSH, row.EvBkS)
	row.PpFP = r.PowerPlay.Points(row.PpG, row.PpA, row.PpSH, row.PpBkS)
	row.PkFP = r.PenaltyKill.Points(row.PkG, row.PkA, row.PkSH, row.PkBkS)
	row.TOI = row.EvTOI + row.PpTOI + row.PkTOI
	row.FP = row.EvFP + row.PpFP + row.PkFP
	row.FPPer60 = PerSixty(row.FP, row.TOI)
}
