package orb

import (
	"github.com/smallbiznis/orbload/internal/orb/client"
	"go.uber.org/fx"
)

var Module = fx.Module("orb.client",
	fx.Provide(client.New),
)
