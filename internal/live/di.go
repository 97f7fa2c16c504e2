package live

import (
	"log/slog"

	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Hub, error) {
		return NewHub(do.MustInvoke[*slog.Logger](i)), nil
	})
}
