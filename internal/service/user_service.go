package service

import (
	"log"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	"github.com/yourusername/satprep-api/internal/handler/dto"
)

// UserService provides user profile and leaderboard reads.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// GetLeaderboard returns a paginated leaderboard ranked by lifetime correct
// answers.
func (s *UserService) GetLeaderboard(page, pageSize int) (*dto.PaginatedLeaderboardResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize

	users, total, err := s.userRepo.GetLeaderboard(pageSize, offset)
	if err != nil {
		log.Printf("[UserService] Failed to load leaderboard: %v", err)
		return nil, err
	}

	userDTOs := make([]*dto.LeaderboardUserDTO, len(users))
	for i, user := range users {
		userDTOs[i] = &dto.LeaderboardUserDTO{
			Rank:              offset + i + 1,
			UserID:            user.ID,
			Username:          user.Username,
			QuestionsAnswered: user.QuestionsAnswered,
			CorrectAnswers:    user.CorrectAnswers,
			CurrentStreak:     user.CurrentStreak,
		}
	}

	return &dto.PaginatedLeaderboardResponse{
		Users:    userDTOs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
