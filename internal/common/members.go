package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"club-points-ledger/internal/models"

	"gopkg.in/yaml.v2"
)

type MemberConfig struct {
	Id            string `yaml:"id"`
	Email         string `yaml:"email"`
	DisplayName   string `yaml:"displayName"`
	Nickname      string `yaml:"nickname"`
	PhotoURL      string `yaml:"photoURL"`
	Points        int64  `yaml:"points"`
	IsAdmin       bool   `yaml:"isAdmin"`
	IsChallenger  bool   `yaml:"isChallenger"`
	IsTestAccount bool   `yaml:"isTestAccount"`
}

type MembersConfig struct {
	Members []MemberConfig `yaml:"members"`
}

// LoadMemberSeed reads member profiles from a YAML seed file.
func LoadMemberSeed(membersFile string) ([]models.User, error) {
	var membersPath string
	if filepath.IsAbs(membersFile) {
		membersPath = membersFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		membersPath = filepath.Join(wd, membersFile)
	}

	data, err := os.ReadFile(membersPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", membersFile, err)
	}
	return ParseMemberSeed(data)
}

func ParseMemberSeed(data []byte) ([]models.User, error) {
	var config MembersConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse member seed: %w", err)
	}

	seen := make(map[string]bool, len(config.Members))
	users := make([]models.User, 0, len(config.Members))
	for i, member := range config.Members {
		id := strings.TrimSpace(member.Id)
		if id == "" {
			return nil, fmt.Errorf("member at index %d missing id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("member %s listed twice", id)
		}
		if member.Points < 0 {
			return nil, fmt.Errorf("member %s has negative points", id)
		}
		seen[id] = true
		users = append(users, models.User{
			Id:            id,
			Email:         member.Email,
			DisplayName:   member.DisplayName,
			Nickname:      member.Nickname,
			PhotoURL:      member.PhotoURL,
			Points:        member.Points,
			IsAdmin:       member.IsAdmin,
			IsChallenger:  member.IsChallenger,
			IsTestAccount: member.IsTestAccount,
		})
	}
	return users, nil
}
