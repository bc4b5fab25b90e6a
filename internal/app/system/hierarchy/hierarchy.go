// internal/app/system/hierarchy/hierarchy.go
package hierarchy

// Role tags. RoleAdmin is the global-admin sentinel; global access
// additionally requires the reserved admin username (see access package).
const (
	RoleSoldier         = "Soldier"
	RoleTeamLeader      = "Team Leader"
	RoleSquadLeader     = "Squad Leader"
	RolePlatoonSergeant = "Platoon Sergeant"
	RolePlatoonLeader   = "Platoon Leader"
	RoleSectionSergeant = "Section Sergeant"
	RoleFirstSergeant   = "First Sergeant"
	RoleXO              = "XO"
	RoleCommander       = "Commander"
	RoleAdmin           = "admin"
)

// AdminUsername is the reserved username for the global admin. The role
// tag alone is not sufficient for global access.
const AdminUsername = "admin"

// Organizational levels, ordered Team < Squad < Platoon < Company < Battalion.
const (
	LevelTeam      = "Team"
	LevelSquad     = "Squad"
	LevelPlatoon   = "Platoon"
	LevelCompany   = "Company"
	LevelBattalion = "Battalion"
)

// visibleLevels maps each role to the unit levels it may see or manage at
// or below its own position. Loaded once; never mutated at runtime.
var visibleLevels = map[string][]string{
	RoleSoldier:         {},
	RoleTeamLeader:      {LevelTeam},
	RoleSquadLeader:     {LevelTeam, LevelSquad},
	RolePlatoonSergeant: {LevelTeam, LevelSquad, LevelPlatoon},
	RolePlatoonLeader:   {LevelTeam, LevelSquad, LevelPlatoon},
	RoleFirstSergeant:   {LevelTeam, LevelSquad, LevelPlatoon, LevelCompany},
	RoleCommander:       {LevelTeam, LevelSquad, LevelPlatoon, LevelCompany},
	RoleAdmin:           {LevelTeam, LevelSquad, LevelPlatoon, LevelCompany, LevelBattalion},
}

// LevelsVisibleTo returns the unit levels the given role may access.
// Roles with no subordinates (and unknown roles) get an empty set.
// The returned slice is a copy; callers may modify it freely.
func LevelsVisibleTo(role string) []string {
	levels, ok := visibleLevels[role]
	if !ok {
		return nil
	}
	out := make([]string, len(levels))
	copy(out, levels)
	return out
}

// CanSeeLevel reports whether the role's visible set includes the level.
func CanSeeLevel(role, level string) bool {
	for _, l := range visibleLevels[role] {
		if l == level {
			return true
		}
	}
	return false
}

// LevelRank returns the numeric position of a unit level in the chain of
// command: Team=1 up to Battalion=5. Unrecognized levels sort lowest (0).
func LevelRank(level string) int {
	switch level {
	case LevelTeam:
		return 1
	case LevelSquad:
		return 2
	case LevelPlatoon:
		return 3
	case LevelCompany:
		return 4
	case LevelBattalion:
		return 5
	default:
		return 0
	}
}

// ValidLevel reports whether level is one of the five recognized levels.
func ValidLevel(level string) bool {
	return LevelRank(level) > 0
}

// IsLeadershipRole reports whether role carries leadership authority.
// Every recognized role above plain Soldier counts, including Section
// Sergeant and XO despite their empty visibility sets.
func IsLeadershipRole(role string) bool {
	return ValidRole(role) && role != RoleSoldier
}

// ValidRole reports whether role is one of the recognized role tags.
// Section Sergeant and XO are valid roles even though the visibility
// table gives them no subordinate levels.
func ValidRole(role string) bool {
	switch role {
	case RoleSoldier, RoleTeamLeader, RoleSquadLeader, RolePlatoonSergeant,
		RolePlatoonLeader, RoleSectionSergeant, RoleFirstSergeant, RoleXO,
		RoleCommander, RoleAdmin:
		return true
	}
	return false
}
