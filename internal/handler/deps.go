package handler

import (
	"github.com/KYoiRyi/coLAN/internal/app/files"
	"github.com/KYoiRyi/coLAN/internal/app/identity"
	"github.com/KYoiRyi/coLAN/internal/app/msglog"
	"github.com/KYoiRyi/coLAN/internal/app/presence"
	"github.com/KYoiRyi/coLAN/internal/app/room"
	"github.com/KYoiRyi/coLAN/internal/configs"
)

type AppDeps struct {
	Config     *configs.AppConfig
	Rooms      *room.Registry
	Presence   *presence.Tracker
	Messages   *msglog.Log
	Files      *files.Intake
	Identities *identity.Store
}
