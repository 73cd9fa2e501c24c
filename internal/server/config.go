package server

import (
	"context"

	"egame-ws/internal/biz"
)

// ConfigWatcher ties the config distribution lifecycle to the app: the
// invalidation subscription comes up before traffic and is torn down on
// shutdown.
type ConfigWatcher struct {
	uc *biz.ConfigUsecase
}

func NewConfigWatcher(uc *biz.ConfigUsecase) *ConfigWatcher {
	return &ConfigWatcher{uc: uc}
}

func (w *ConfigWatcher) Start(ctx context.Context) error {
	return w.uc.Start(ctx)
}

func (w *ConfigWatcher) Stop(ctx context.Context) error {
	w.uc.Stop()
	return nil
}
