package service

import (
	"github.com/aldis-z/notice-board/internal/config"
	"github.com/aldis-z/notice-board/internal/mail"
	"github.com/aldis-z/notice-board/internal/repository"
)

// Services bundles the service layer for handler wiring.
type Services struct {
	Auth     *AuthService
	Notice   *NoticeService
	Comment  *CommentService
	Like     *LikeService
	Profile  *ProfileService
	Category *CategoryService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, mailer mail.Mailer) *Services {
	return &Services{
		Auth:     NewAuthService(repos, cfg, mailer),
		Notice:   NewNoticeService(repos),
		Comment:  NewCommentService(repos),
		Like:     NewLikeService(repos),
		Profile:  NewProfileService(repos),
		Category: NewCategoryService(repos),
	}
}
