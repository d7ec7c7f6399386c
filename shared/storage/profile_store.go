package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"channelscout/internal/models"
)

// ProfileStore persists the latest taste profile and recommendation batch
// per user. Writes replace, never merge: a new analysis run supersedes the
// previous one entirely.
type ProfileStore struct {
	filePath        string
	mu              sync.RWMutex
	profiles        map[string]*StoredProfile
	recommendations map[string]*StoredRecommendations
}

// StoredProfile is the persisted result of one analysis run.
type StoredProfile struct {
	UserID          string                 `json:"user_id"`
	Categories      []models.TasteCategory `json:"categories"`
	AnalysisSummary string                 `json:"analysis_summary"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// StoredRecommendations is the persisted latest batch for one user.
type StoredRecommendations struct {
	UserID      string                      `json:"user_id"`
	Items       []models.RecommendationItem `json:"items"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

type storeFile struct {
	Profiles        []*StoredProfile         `json:"profiles"`
	Recommendations []*StoredRecommendations `json:"recommendations"`
}

// NewProfileStore creates a store backed by a JSON file under dataDir.
func NewProfileStore(dataDir string) (*ProfileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &ProfileStore{
		filePath:        filepath.Join(dataDir, "taste_profiles.json"),
		profiles:        make(map[string]*StoredProfile),
		recommendations: make(map[string]*StoredRecommendations),
	}
	if err := store.load(); err != nil {
		return nil, fmt.Errorf("failed to load profile store: %w", err)
	}
	return store, nil
}

// SaveProfile replaces the stored profile for userID.
func (ps *ProfileStore) SaveProfile(userID string, result *models.TasteAnalysisResult) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.profiles[userID] = &StoredProfile{
		UserID:          userID,
		Categories:      result.Categories,
		AnalysisSummary: result.AnalysisSummary,
		GeneratedAt:     time.Now(),
	}
	return ps.save()
}

// GetProfile returns the latest stored profile for userID, if any.
func (ps *ProfileStore) GetProfile(userID string) (*StoredProfile, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	profile, ok := ps.profiles[userID]
	return profile, ok
}

// SaveRecommendations replaces the stored batch for userID.
func (ps *ProfileStore) SaveRecommendations(userID string, items []models.RecommendationItem) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.recommendations[userID] = &StoredRecommendations{
		UserID:      userID,
		Items:       items,
		GeneratedAt: time.Now(),
	}
	return ps.save()
}

// GetRecommendations returns the latest stored batch for userID, if any.
func (ps *ProfileStore) GetRecommendations(userID string) (*StoredRecommendations, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	batch, ok := ps.recommendations[userID]
	return batch, ok
}

func (ps *ProfileStore) load() error {
	file, err := os.Open(ps.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run, start empty.
			return nil
		}
		return fmt.Errorf("failed to open store file: %w", err)
	}
	defer file.Close()

	var contents storeFile
	if err := json.NewDecoder(file).Decode(&contents); err != nil {
		return fmt.Errorf("failed to decode store file: %w", err)
	}

	for _, profile := range contents.Profiles {
		ps.profiles[profile.UserID] = profile
	}
	for _, batch := range contents.Recommendations {
		ps.recommendations[batch.UserID] = batch
	}
	return nil
}

func (ps *ProfileStore) save() error {
	var contents storeFile
	for _, profile := range ps.profiles {
		contents.Profiles = append(contents.Profiles, profile)
	}
	for _, batch := range ps.recommendations {
		contents.Recommendations = append(contents.Recommendations, batch)
	}

	file, err := os.Create(ps.filePath)
	if err != nil {
		return fmt.Errorf("failed to create store file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(contents); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode store file: %w", err)
	}
	// Surface flush failures instead of silently keeping a truncated file.
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}
	return nil
}
