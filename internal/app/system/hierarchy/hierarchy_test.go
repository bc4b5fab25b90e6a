package hierarchy_test

import (
	"testing"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
)

func TestLevelsVisibleTo_Soldier(t *testing.T) {
	levels := hierarchy.LevelsVisibleTo(hierarchy.RoleSoldier)
	if len(levels) != 0 {
		t.Errorf("expected empty set for Soldier, got %v", levels)
	}
}

func TestLevelsVisibleTo_UnknownRole(t *testing.T) {
	if levels := hierarchy.LevelsVisibleTo("Quartermaster"); levels != nil {
		t.Errorf("expected nil for unknown role, got %v", levels)
	}
}

func TestLevelsVisibleTo_Admin(t *testing.T) {
	levels := hierarchy.LevelsVisibleTo(hierarchy.RoleAdmin)
	want := []string{
		hierarchy.LevelTeam,
		hierarchy.LevelSquad,
		hierarchy.LevelPlatoon,
		hierarchy.LevelCompany,
		hierarchy.LevelBattalion,
	}
	if len(levels) != len(want) {
		t.Fatalf("admin levels: got %v, want %v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("admin levels[%d]: got %q, want %q", i, levels[i], want[i])
		}
	}
}

func TestLevelsVisibleTo_PlatoonLeaderExcludesCompany(t *testing.T) {
	if hierarchy.CanSeeLevel(hierarchy.RolePlatoonLeader, hierarchy.LevelCompany) {
		t.Error("Platoon Leader should not see Company level")
	}
	if !hierarchy.CanSeeLevel(hierarchy.RolePlatoonLeader, hierarchy.LevelPlatoon) {
		t.Error("Platoon Leader should see Platoon level")
	}
}

func TestLevelsVisibleTo_ReturnsCopy(t *testing.T) {
	levels := hierarchy.LevelsVisibleTo(hierarchy.RoleCommander)
	levels[0] = "Tampered"
	again := hierarchy.LevelsVisibleTo(hierarchy.RoleCommander)
	if again[0] != hierarchy.LevelTeam {
		t.Error("LevelsVisibleTo must not expose internal state")
	}
}

func TestLevelRank_Ordering(t *testing.T) {
	order := []string{
		hierarchy.LevelTeam,
		hierarchy.LevelSquad,
		hierarchy.LevelPlatoon,
		hierarchy.LevelCompany,
		hierarchy.LevelBattalion,
	}
	for i := 1; i < len(order); i++ {
		if hierarchy.LevelRank(order[i-1]) >= hierarchy.LevelRank(order[i]) {
			t.Errorf("expected %s < %s", order[i-1], order[i])
		}
	}
}

func TestLevelRank_UnknownSortsLowest(t *testing.T) {
	if got := hierarchy.LevelRank("Brigade"); got != 0 {
		t.Errorf("unknown level rank: got %d, want 0", got)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{
		hierarchy.RoleSoldier, hierarchy.RoleXO, hierarchy.RoleSectionSergeant,
		hierarchy.RoleCommander, hierarchy.RoleAdmin,
	} {
		if !hierarchy.ValidRole(role) {
			t.Errorf("expected %q to be a valid role", role)
		}
	}
	if hierarchy.ValidRole("General") {
		t.Error("expected 'General' to be invalid")
	}
}
