package core

import (
	"log/slog"

	"github.com/samber/do/v2"

	"liveqa/impl/auth"
	"liveqa/impl/repository"
	"liveqa/internal/config"
	"liveqa/internal/database"
	"liveqa/internal/live"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*repository.InviteRepository, error) {
		conf := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[repository.Store](i)
		log := do.MustInvoke[*slog.Logger](i)
		return repository.NewInviteRepository(store, conf.Invite.TTL, log), nil
	})
	do.Provide(injector, func(i do.Injector) (*auth.Auth, error) {
		conf := do.MustInvoke[*config.Config](i)
		mongo := do.MustInvoke[*database.MongoDB](i)
		invites := do.MustInvoke[*repository.InviteRepository](i)
		log := do.MustInvoke[*slog.Logger](i)
		var db auth.Database
		if mongo != nil {
			db = mongo
		}
		return auth.New(db, invites, conf.Auth, log), nil
	})
	do.Provide(injector, func(i do.Injector) (*Core, error) {
		conf := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[repository.Store](i)
		invites := do.MustInvoke[*repository.InviteRepository](i)
		log := do.MustInvoke[*slog.Logger](i)
		c := New(store, invites, conf.Invite.BaseUrl, log)
		c.SetAuthService(do.MustInvoke[*auth.Auth](i))
		c.SetPublisher(do.MustInvoke[*live.Hub](i))
		return c, nil
	})
}
