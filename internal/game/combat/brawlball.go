package combat

import "fmt"

const (
	// GoalsToWin is the goal count that ends a brawl ball match.
	GoalsToWin      = 2
	brawlBallLimit  = 150
	shotChance      = 10
	openGoalChance  = 50
	superShotChance = 40
)

var brawlBall = &Mode{
	Tag:        ModeBrawlBall,
	Name:       "Brawl Ball",
	RoundLimit: brawlBallLimit,
	Objective:  "shoot at goal",
	objective:  shootGoal,
	onDefeat:   respawn,
	decide:     decideGoals,
}

// shootGoal scores with 10% (50% when the opponent is respawning), and a ready
// super grants an independent 40% roll.
func shootGoal(m *Match, actor, opponent *Combatant) {
	chance := shotChance
	if opponent.Respawning {
		chance = openGoalChance
	}
	scored := m.roller.Percent("goal shot", chance)
	if actor.SuperReady() && m.roller.Percent("super shot", superShotChance) {
		scored = true
	}
	if !scored {
		m.emit(Event{
			Kind:      EventObjective,
			ActorID:   actor.ID,
			Move:      MoveObjective,
			Narrative: fmt.Sprintf("%s shot at goal and missed.", actor.Name),
		})
		return
	}
	actor.Goals++
	m.emit(Event{
		Kind:      EventObjective,
		ActorID:   actor.ID,
		Move:      MoveObjective,
		Amount:    1,
		Narrative: fmt.Sprintf("%s scored! (%d-%d)", actor.Name, actor.Goals, opponent.Goals),
	})
}

func decideGoals(m *Match) Decision {
	switch {
	case m.First.Goals >= GoalsToWin:
		return Decision{Over: true, Winner: m.First}
	case m.Second.Goals >= GoalsToWin:
		return Decision{Over: true, Winner: m.Second}
	}
	return Decision{}
}
