package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/guess"
	"github.com/quincybot/rosterquiz/internal/storage"
)

// Service holds the club-to-roster mapping used to seed game sessions.
// Rosters are loaded once at startup and read-only afterwards.
type Service struct {
	storage storage.Storage

	mu     sync.RWMutex
	clubs  map[model.ClubName][]model.RosterEntry
	loaded bool
}

// New creates a new roster service
func New(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
		clubs:   make(map[model.ClubName][]model.RosterEntry),
	}
}

// LoadFromStorage loads previously persisted rosters
func (s *Service) LoadFromStorage(ctx context.Context) error {
	clubs, err := s.storage.GetRosters(ctx)
	if err != nil {
		return err
	}
	return s.load(clubs)
}

// LoadFromFile loads rosters from a CSV file. Each record is
// "full name,club[,alias...]": the last whitespace-separated token of
// the full name becomes the primary surname, and any extra fields are
// additional aliases.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening roster file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parsing roster file: %w", err)
	}

	clubs := make(map[model.ClubName][]model.RosterEntry)
	for _, record := range records {
		if len(record) < 2 || record[0] == "" {
			continue
		}

		fullName, clubName := record[0], model.ClubName(record[1])
		tokens := strings.Fields(fullName)
		if len(tokens) == 0 || clubName == "" {
			continue
		}
		primary := tokens[len(tokens)-1]

		aliases := []string{guess.Normalize(primary)}
		for _, alias := range record[2:] {
			if normalized := guess.Normalize(alias); normalized != "" {
				aliases = append(aliases, normalized)
			}
		}

		clubs[clubName] = append(clubs[clubName], model.RosterEntry{
			Primary: primary,
			Aliases: aliases,
		})
	}

	if len(clubs) == 0 {
		return model.ErrRosterUnavailable
	}

	// Persist so future processes can start without the file
	if err := s.storage.SaveRosters(ctx, clubs); err != nil {
		return err
	}

	return s.load(clubs)
}

// LoadClubs directly loads a roster mapping (useful for testing)
func (s *Service) LoadClubs(clubs map[model.ClubName][]model.RosterEntry) error {
	return s.load(clubs)
}

func (s *Service) load(clubs map[model.ClubName][]model.RosterEntry) error {
	if len(clubs) == 0 {
		return model.ErrRosterUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clubs = clubs
	s.loaded = true
	return nil
}

// Clubs returns all club names in sorted order
func (s *Service) Clubs() []model.ClubName {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]model.ClubName, 0, len(s.clubs))
	for name := range s.clubs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Roster returns the roster for a club
func (s *Service) Roster(club model.ClubName) ([]model.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, model.ErrRosterUnavailable
	}

	roster, ok := s.clubs[club]
	if !ok {
		return nil, model.ErrClubNotFound
	}
	return roster, nil
}

// Loaded reports whether any roster data is available
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
