package handler

import (
	adminhandler "coop-intake-go/internal/transport/httpserver/handler/admin"
	commonhandler "coop-intake-go/internal/transport/httpserver/handler/common"
	publichandler "coop-intake-go/internal/transport/httpserver/handler/public"
)

type Handlers struct {
	Common *commonhandler.Handlers
	Public *publichandler.Handlers
	Admin  *adminhandler.Handlers
}

func New(common *commonhandler.Handlers, public *publichandler.Handlers, admin *adminhandler.Handlers) *Handlers {
	return &Handlers{
		Common: common,
		Public: public,
		Admin:  admin,
	}
}
