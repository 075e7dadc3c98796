package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/draftbot/internal/api/fantasy"
	"github.com/omarshaarawi/draftbot/internal/draft"
	"github.com/omarshaarawi/draftbot/internal/models"
	"github.com/omarshaarawi/draftbot/internal/repository/memory"
	"github.com/omarshaarawi/draftbot/internal/schema"
	"github.com/omarshaarawi/draftbot/internal/tables"
)

var ErrPlayerNotFound = errors.New("player not found")

// BoardSource supplies the live draft board.
type BoardSource interface {
	GetDraftBoard(ctx context.Context, teamID int, opts fantasy.BoardOptions) (*models.Board, error)
	GetDraftDetail(ctx context.Context) ([]models.DraftedPlayer, error)
}

type DraftService struct {
	source    BoardSource
	repo      *memory.Repository
	optimizer *draft.Optimizer
	teamID    int
	opts      fantasy.BoardOptions

	mu sync.Mutex
	// overrides are statuses set by hand; they survive a refresh.
	overrides map[string]models.DraftStatus
}

func NewDraftService(source BoardSource, repo *memory.Repository, optimizer *draft.Optimizer, teamID int, opts fantasy.BoardOptions) *DraftService {
	return &DraftService{
		source:    source,
		repo:      repo,
		optimizer: optimizer,
		teamID:    teamID,
		opts:      opts,
		overrides: make(map[string]models.DraftStatus),
	}
}

func (s *DraftService) Refresh(ctx context.Context) (string, error) {
	board, err := s.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("error refreshing draft board: %w", err)
	}

	return fmt.Sprintf("🔄 Board refreshed: %d players, %d picks made.", len(board.Input.Players), board.PickCount), nil
}

func (s *DraftService) refresh(ctx context.Context) (*models.Board, error) {
	board, err := s.source.GetDraftBoard(ctx, s.teamID, s.opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range board.Input.Players {
		if status, ok := s.overrides[p.Name]; ok {
			board.Input.Players[i].Status = status
		}
	}
	s.repo.SaveBoard(board)

	slog.Info("Draft board refreshed", "players", len(board.Input.Players), "picks", board.PickCount)
	return board, nil
}

func (s *DraftService) currentBoard(ctx context.Context) (*models.Board, error) {
	if board := s.repo.GetBoard(); board != nil {
		return board, nil
	}
	return s.refresh(ctx)
}

// snapshot copies the board input so it can be solved without holding the lock.
func (s *DraftService) snapshot(ctx context.Context) (*models.Input, error) {
	board, err := s.currentBoard(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	in := *board.Input
	in.Players = slices.Clone(board.Input.Players)
	in.RosterRequirements = slices.Clone(board.Input.RosterRequirements)
	in.MyDraftPositions = slices.Clone(board.Input.MyDraftPositions)
	return &in, nil
}

func (s *DraftService) Plan(ctx context.Context) (string, error) {
	in, err := s.snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("error loading draft board: %w", err)
	}

	plan, err := s.optimizer.Optimize(ctx, draft.InputTables(in))
	if err != nil {
		var verr *schema.ValidationError
		switch {
		case errors.Is(err, draft.ErrNoDraftPossible):
			return "🚫 No draft at all is possible!", nil
		case errors.As(err, &verr):
			return "", fmt.Errorf("draft board is invalid: %w", err)
		default:
			return "", fmt.Errorf("error planning draft: %w", err)
		}
	}

	s.mu.Lock()
	s.repo.SavePlan(plan)
	s.mu.Unlock()
	return formatPlan(plan), nil
}

func (s *DraftService) MarkMine(ctx context.Context, name string) (string, error) {
	player, err := s.setStatus(ctx, name, models.DraftedByMe)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ *%s* (%s) is on your roster.", player.Name, player.Position), nil
}

func (s *DraftService) MarkTaken(ctx context.Context, name string) (string, error) {
	player, err := s.setStatus(ctx, name, models.DraftedBySomeoneElse)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("❌ *%s* (%s) is off the board.", player.Name, player.Position), nil
}

func (s *DraftService) Undo(ctx context.Context, name string) (string, error) {
	player, err := s.setStatus(ctx, name, models.Undrafted)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("↩️ *%s* (%s) is available again.", player.Name, player.Position), nil
}

func (s *DraftService) setStatus(ctx context.Context, name string, status models.DraftStatus) (models.Player, error) {
	board, err := s.currentBoard(ctx)
	if err != nil {
		return models.Player{}, fmt.Errorf("error loading draft board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := findPlayer(board.Input.Players, name)
	if !ok {
		return models.Player{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}

	board.Input.Players[i].Status = status
	if status == models.Undrafted {
		delete(s.overrides, board.Input.Players[i].Name)
	} else {
		s.overrides[board.Input.Players[i].Name] = status
	}
	board.LastPlan = nil
	board.LastUpdated = time.Now()

	slog.Info("Player status changed", "player", board.Input.Players[i].Name, "status", status)
	return board.Input.Players[i], nil
}

// findPlayer matches name exactly, ignoring case, then falls back to the
// closest name by Levenshtein similarity above 0.7.
func findPlayer(players []models.Player, name string) (int, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return 0, false
	}
	for i, p := range players {
		if strings.ToLower(p.Name) == query {
			return i, true
		}
	}

	best := -1
	bestScore := 0.0
	threshold := 0.7

	for i, p := range players {
		fullName := strings.ToLower(p.Name)
		distance := fuzzy.LevenshteinDistance(query, fullName)
		maxLen := float64(max(len(query), len(fullName)))
		similarity := 1 - float64(distance)/maxLen

		if similarity > threshold && similarity > bestScore {
			bestScore = similarity
			best = i
		}
	}
	return best, best >= 0
}

func (s *DraftService) Board(ctx context.Context) (string, error) {
	board, err := s.currentBoard(ctx)
	if err != nil {
		return "", fmt.Errorf("error loading draft board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return formatBoard(board), nil
}

// Export renders the current board as input tables in format.
func (s *DraftService) Export(ctx context.Context, format tables.Format) ([]byte, string, error) {
	in, err := s.snapshot(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("error loading draft board: %w", err)
	}

	raw, err := tables.Encode(format, draft.InputSchema, draft.InputTables(in))
	if err != nil {
		return nil, "", fmt.Errorf("error exporting draft board: %w", err)
	}
	return raw, "draft_board" + format.Extension(), nil
}

// PollPicks refreshes the board when ESPN reports new picks and returns a
// fresh plan. It reports false when nothing changed or the board was only
// just loaded.
func (s *DraftService) PollPicks(ctx context.Context) (string, bool, error) {
	board := s.repo.GetBoard()
	if board == nil {
		_, err := s.refresh(ctx)
		return "", false, err
	}

	picks, err := s.source.GetDraftDetail(ctx)
	if err != nil {
		return "", false, fmt.Errorf("error polling draft picks: %w", err)
	}
	if len(picks) == board.PickCount {
		return "", false, nil
	}

	slog.Info("New draft picks", "previous", board.PickCount, "current", len(picks))
	if _, err := s.refresh(ctx); err != nil {
		return "", false, fmt.Errorf("error refreshing draft board: %w", err)
	}

	plan, err := s.Plan(ctx)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("🔔 *%d new pick(s)*\n\n%s", len(picks)-board.PickCount, plan), true, nil
}

func formatPlan(plan *models.Solution) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *Draft Plan* (%s)\n", plan.DraftPerformed))
	sb.WriteString(fmt.Sprintf("Total yield: %.2f\n\n", plan.TotalYield))

	for _, pick := range plan.Picks {
		marker := "▫️"
		if pick.Provenance == models.Actual {
			marker = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s #%d %s %s - %s\n", marker, pick.DraftPosition, pick.Position, pick.PlayerName, pick.Role))
	}

	if plan.DraftPerformed == models.Partial {
		sb.WriteString("\n⚠️ Only a partial draft was possible.")
	}
	return sb.String()
}

func formatBoard(board *models.Board) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏈 *%s*\n", board.LeagueName))
	if board.TeamName != "" {
		sb.WriteString(fmt.Sprintf("Team: %s\n", board.TeamName))
	}
	sb.WriteString(fmt.Sprintf("Picks made: %d\n", board.PickCount))

	for _, pos := range board.Input.MyDraftPositions {
		if pos > board.PickCount {
			sb.WriteString(fmt.Sprintf("Your next pick: #%d\n", pos))
			break
		}
	}

	var mine, available []models.Player
	for _, p := range board.Input.Players {
		switch p.Status {
		case models.DraftedByMe:
			mine = append(mine, p)
		case models.Undrafted:
			available = append(available, p)
		}
	}

	sb.WriteString("\n*Your Roster:*\n")
	if len(mine) == 0 {
		sb.WriteString("No players yet.\n")
	}
	for _, p := range mine {
		sb.WriteString(fmt.Sprintf("  • %s %s - %.1f pts\n", p.Position, p.Name, p.ExpectedPoints))
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].AverageDraftPosition < available[j].AverageDraftPosition
	})
	sb.WriteString("\n*Best Available:*\n")
	for _, p := range available[:min(10, len(available))] {
		sb.WriteString(fmt.Sprintf("  • %s %s - ADP %.1f, %.1f pts\n", p.Position, p.Name, p.AverageDraftPosition, p.ExpectedPoints))
	}

	if board.LastPlan != nil {
		sb.WriteString(fmt.Sprintf("\nLast plan yield: %.2f", board.LastPlan.TotalYield))
	}
	return sb.String()
}
