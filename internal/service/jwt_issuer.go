package service

import (
	"time"

	"inkbytr/internal/entity"
	"inkbytr/internal/utils"
)

type JWTSessionIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTSessionIssuer) IssueSessionToken(user entity.User) (string, time.Duration, error) {
	if j.Manager == nil {
		return "", 0, ErrInvalidToken
	}
	return j.Manager.IssueSessionToken(user.ID.Hex(), string(user.Role))
}
