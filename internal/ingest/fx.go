package ingest

import (
	"github.com/smallbiznis/orbload/internal/ingest/service"
	"github.com/smallbiznis/orbload/internal/ingest/source"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest.service",
	source.Module,
	fx.Provide(service.New),
)
