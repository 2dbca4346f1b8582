package services

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"tournament-desk/internal/realtime"
	"tournament-desk/internal/status"
	"tournament-desk/models"
	"tournament-desk/monitoring"
)

// TargetLister supplies the channels a globally visible event should
// reach, computed at the moment of the draw.
type TargetLister interface {
	BroadcastChannels() []string
}

// LotteryService draws random winners from a caller-supplied pool and
// keeps the append-only draw log. Eligibility policy is the caller's
// problem: the engine never filters the pool and past winners stay
// eligible unless the caller removes them.
type LotteryService struct {
	publisher realtime.Publisher
	targets   TargetLister

	mu      sync.Mutex
	records []models.LotteryRecord
}

func NewLotteryService(publisher realtime.Publisher, targets TargetLister) *LotteryService {
	return &LotteryService{
		publisher: publisher,
		targets:   targets,
	}
}

// Draw selects count distinct entries uniformly without replacement,
// appends the record and broadcasts it to every connected channel.
func (s *LotteryService) Draw(title string, pool []string, count int) (models.LotteryRecord, error) {
	if count < 1 || count > len(pool) {
		monitoring.TrackOperation("request_lottery", "rejected")
		return models.LotteryRecord{}, status.ErrInsufficientPool
	}

	order := rand.Perm(len(pool))
	winners := make([]string, 0, count)
	for _, idx := range order[:count] {
		winners = append(winners, pool[idx])
	}

	record := models.LotteryRecord{
		Title:   title,
		Time:    time.Now(),
		Winners: winners,
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()

	message := map[string]any{
		"type":    "lottery_result",
		"title":   record.Title,
		"time":    record.Time,
		"winners": record.Winners,
	}
	for _, channel := range s.targets.BroadcastChannels() {
		s.publisher.Publish(channel, message)
	}

	monitoring.TrackLotteryDraw()
	monitoring.TrackOperation("request_lottery", "ok")
	slog.Info("lottery drawn", "title", title, "winners", count, "pool", len(pool))
	return record, nil
}

// History returns the draw log, oldest first.
func (s *LotteryService) History() []models.LotteryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]models.LotteryRecord, len(s.records))
	copy(records, s.records)
	return records
}

// SyncAdmin pushes the full draw history to a newly authorized admin.
func (s *LotteryService) SyncAdmin(adminID string) {
	s.publisher.Publish(realtime.AdminChannel(adminID), map[string]any{
		"type":    "lottery_history",
		"records": s.History(),
	})
}
