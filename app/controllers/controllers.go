package controllers

import (
	"context"

	"github.com/gc-digital-net/crosspost/app/models"
	"github.com/gc-digital-net/crosspost/internal/pkg/connect"
	"github.com/gc-digital-net/crosspost/internal/pkg/scheduler"
)

// ConnectService is what the connect handlers need from the connection
// manager.
type ConnectService interface {
	Initiate(platform string, accountID, callerID uint) (string, error)
	Complete(ctx context.Context, platform, code, state string, callerID uint) (*models.SocialConnection, error)
	Connections(userID uint) ([]models.SocialConnection, error)
	Deactivate(userID uint, platform string) error
}

// PostService is what the post handlers need from the fan-out service.
type PostService interface {
	Submit(ctx context.Context, userID uint, req *scheduler.SubmitRequest) (*models.Post, error)
	List(userID uint, page, pageSize int) ([]models.Post, error)
	Cancel(userID uint, postUUID string, entryID uint) error
}

var (
	connectService ConnectService
	postService    PostService
)

// SetServices wires the handler dependencies once at startup.
func SetServices(cs ConnectService, ps PostService) {
	connectService = cs
	postService = ps
}

var _ ConnectService = (*connect.Manager)(nil)
var _ PostService = (*scheduler.Service)(nil)
