package steam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andygrunwald/vdf"
)

// ErrNoAccount is returned when loginusers.vdf lists no usable account.
var ErrNoAccount = errors.New("no steam account found")

// Account describes a user entry from config/loginusers.vdf.
type Account struct {
	SteamID     string
	AccountName string
	PersonaName string
	MostRecent  bool
}

// DisplayName prefers the persona name and falls back to the Steam id.
func (a Account) DisplayName() string {
	if name := strings.TrimSpace(a.PersonaName); name != "" {
		return name
	}
	return a.SteamID
}

// installCandidates lists the usual Linux install roots relative to $HOME.
var installCandidates = []string{
	".steam/steam",
	".steam/root",
	".local/share/Steam",
	".var/app/com.valvesoftware.Steam/.local/share/Steam",
}

// DetectInstall returns the first existing Steam root under the user's home.
func DetectInstall() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	for _, rel := range installCandidates {
		candidate := filepath.Join(home, rel)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Accounts parses <steamPath>/config/loginusers.vdf. Entries are sorted by
// Steam id for stable output.
func Accounts(steamPath string) ([]Account, error) {
	path := filepath.Join(steamPath, "config", "loginusers.vdf")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open loginusers: %w", err)
	}
	defer file.Close()

	parsed, err := vdf.NewParser(file).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse loginusers: %w", err)
	}

	users, ok := lookupMap(parsed, "users")
	if !ok {
		return nil, ErrNoAccount
	}

	accounts := make([]Account, 0, len(users))
	for steamID, raw := range users {
		block, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		accounts = append(accounts, Account{
			SteamID:     steamID,
			AccountName: lookupString(block, "AccountName"),
			PersonaName: lookupString(block, "PersonaName"),
			MostRecent:  lookupString(block, "MostRecent") == "1",
		})
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccount
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].SteamID < accounts[j].SteamID })
	return accounts, nil
}

// CurrentAccount returns the account flagged MostRecent.
func CurrentAccount(steamPath string) (Account, error) {
	accounts, err := Accounts(steamPath)
	if err != nil {
		return Account{}, err
	}
	for _, account := range accounts {
		if account.MostRecent {
			return account, nil
		}
	}
	return Account{}, ErrNoAccount
}

// lookupMap finds key case-insensitively; VDF keys are not case-stable
// across Steam client versions.
func lookupMap(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			child, ok := v.(map[string]interface{})
			return child, ok
		}
	}
	return nil, false
}

func lookupString(m map[string]interface{}, key string) string {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
