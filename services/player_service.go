package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
)

type PlayerService interface {
	Create(ctx context.Context, ownerID int, input PlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, ownerID, playerID int) (*models.Player, error)
	List(ctx context.Context, ownerID int, activeOnly bool) ([]*models.Player, error)
	Update(ctx context.Context, ownerID, playerID int, input PlayerInput) (*models.Player, error)
	SetActive(ctx context.Context, ownerID, playerID int, active bool) error
	Delete(ctx context.Context, ownerID, playerID int) error
}

type PlayerInput struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Position string `json:"position"`
	Plan     string `json:"plan"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) Create(ctx context.Context, ownerID int, input PlayerInput) (*models.Player, error) {
	player, err := playerFromInput(ownerID, input)
	if err != nil {
		return nil, err
	}

	if err = s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameConflict) {
			return nil, ErrPlayerNameTaken
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, ownerID, playerID int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, ownerID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context, ownerID int, activeOnly bool) ([]*models.Player, error) {
	players, err := s.playerRepo.ListByOwner(ctx, ownerID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) Update(ctx context.Context, ownerID, playerID int, input PlayerInput) (*models.Player, error) {
	player, err := s.GetByID(ctx, ownerID, playerID)
	if err != nil {
		return nil, err
	}

	updated, err := playerFromInput(ownerID, input)
	if err != nil {
		return nil, err
	}
	player.Name = updated.Name
	player.Nickname = updated.Nickname
	player.Position = updated.Position
	player.Role = updated.Role
	player.Plan = updated.Plan

	if err = s.playerRepo.Update(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameConflict) {
			return nil, ErrPlayerNameTaken
		}
		return nil, fmt.Errorf("failed to update player: %w", err)
	}
	return player, nil
}

func (s *playerService) SetActive(ctx context.Context, ownerID, playerID int, active bool) error {
	player, err := s.GetByID(ctx, ownerID, playerID)
	if err != nil {
		return err
	}
	player.Active = active

	if err = s.playerRepo.Update(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	return nil
}

// Delete removes a player with no round history. Players who already played
// must be deactivated instead, so past standings keep their names.
func (s *playerService) Delete(ctx context.Context, ownerID, playerID int) error {
	err := s.playerRepo.Delete(ctx, ownerID, playerID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return ErrPlayerNotFound
		case errors.Is(err, repositories.ErrPlayerReferenced):
			return ErrPlayerHasHistory
		}
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

func playerFromInput(ownerID int, input PlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	position := models.ParsePosition(input.Position)
	return &models.Player{
		OwnerID:  ownerID,
		Name:     name,
		Nickname: strings.TrimSpace(input.Nickname),
		Position: position,
		Role:     models.RoleForPosition(position),
		Plan:     models.ParsePlan(input.Plan),
		Active:   true,
	}, nil
}
