package authbus

import (
	"context"

	"github.com/jzahidzamacona/Fronty-sub001/storage"
)

// BridgeStorage republishes cross-context writes to accessKey as session
// changes. Writes to any other key are ignored.
func BridgeStorage(ctx context.Context, pub Publisher, w storage.Watcher, accessKey string) (func(), error) {
	if w == nil {
		return func() {}, nil
	}
	return w.Watch(ctx, func(ev storage.Event) {
		if ev.Key != accessKey {
			return
		}
		pub.Publish(Event{Kind: KindSessionChanged, Source: SourceStorage})
	})
}
