package di

import (
	"go.uber.org/zap"

	"loopsite/application/blocks"
	"loopsite/application/commands/bus"
	"loopsite/application/designed"
	"loopsite/application/ports"
	querybus "loopsite/application/queries/bus"
	"loopsite/infrastructure/config"
	"loopsite/interfaces/http/rest"
	"loopsite/interfaces/web"
	"loopsite/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Storage    *Storage
	Registry   *designed.Registry
	Blocks     *blocks.Registry
	Publisher  ports.EventPublisher
	Metrics    *Metrics
	Tracer     *observability.Tracer
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Layout     *web.Layout
	Router     *rest.Router
}
