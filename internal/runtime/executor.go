package runtime

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/domain/ipc"
	"github.com/retrodesk/desktopd/internal/infrastructure/logging"
	"github.com/retrodesk/desktopd/internal/infrastructure/monitoring"
	"github.com/retrodesk/desktopd/internal/shared/id"
)

// executor runs reducer effects. Bus-local effects execute inline on the
// runtime loop; host I/O runs on a bounded worker group and reports
// failures back into the loop as EffectFailed actions.
type executor struct {
	rt       *Runtime
	services Services
	router   *ipc.Router
	events   *Broadcaster
	log      *logging.Logger
	metrics  *monitoring.Metrics
	group    *errgroup.Group
}

func newExecutor(rt *Runtime, services Services, router *ipc.Router, events *Broadcaster, log *logging.Logger, metrics *monitoring.Metrics) *executor {
	group := &errgroup.Group{}
	group.SetLimit(8)
	return &executor{
		rt:       rt,
		services: services,
		router:   router,
		events:   events,
		log:      log,
		metrics:  metrics,
		group:    group,
	}
}

// wait blocks until all in-flight host I/O has finished.
func (e *executor) wait() {
	_ = e.group.Wait()
}

// execute runs a transition's effects. Called on the runtime loop, so
// reading rt.state here is safe; anything slow must go through async.
func (e *executor) execute(ctx context.Context, effects []desktop.Effect) {
	for _, effect := range effects {
		switch eff := effect.(type) {
		case desktop.EffectPersistLayout:
			snap := e.rt.state.Snapshot()
			e.async(ctx, eff.Name(), true, func(ctx context.Context) error {
				return e.rt.persistence.SaveLayout(ctx, snap)
			})
		case desktop.EffectPersistTheme:
			theme := e.rt.state.Theme
			e.async(ctx, eff.Name(), true, func(ctx context.Context) error {
				return e.rt.persistence.SaveTheme(ctx, theme)
			})
		case desktop.EffectPersistWallpaper:
			cfg := e.rt.state.Wallpaper
			e.async(ctx, eff.Name(), true, func(ctx context.Context) error {
				return e.rt.persistence.SaveWallpaper(ctx, cfg)
			})
		case desktop.EffectPersistTerminalHistory:
			history := append([]string(nil), e.rt.state.TerminalHistory...)
			e.async(ctx, eff.Name(), true, func(ctx context.Context) error {
				return e.rt.persistence.SaveTerminalHistory(ctx, history)
			})
		case desktop.EffectFocusWindowInput:
			e.record(eff.Name(), nil)
			e.events.Publish(Event{Type: EventFocusInput, WindowID: uint64(eff.WindowID)})
		case desktop.EffectDispatchLifecycle:
			e.record(eff.Name(), nil)
			e.events.Publish(Event{
				Type:      EventLifecycle,
				WindowID:  uint64(eff.WindowID),
				Lifecycle: string(eff.Event),
			})
			if eff.Event == desktop.LifecycleClosed {
				e.router.RemoveWindow(uint64(eff.WindowID))
			}
		case desktop.EffectDeliverAppEvent:
			e.record(eff.Name(), nil)
			event := Event{
				Type:          EventAppEvent,
				WindowID:      uint64(eff.WindowID),
				Topic:         eff.Topic,
				Payload:       eff.Payload,
				CorrelationID: eff.CorrelationID,
				ReplyTo:       eff.ReplyTo,
			}
			if eff.SourceWindow != nil {
				event.SourceWindowID = uint64(*eff.SourceWindow)
			}
			e.events.Publish(event)
		case desktop.EffectSubscribeWindowTopic:
			err := e.router.Subscribe(uint64(eff.WindowID), eff.Topic)
			e.record(eff.Name(), err)
			if err != nil {
				e.rt.enqueue(desktop.EffectFailed{Effect: eff.Name(), Reason: err.Error()})
			}
		case desktop.EffectUnsubscribeWindowTopic:
			err := e.router.Unsubscribe(uint64(eff.WindowID), eff.Topic)
			e.record(eff.Name(), err)
			if err != nil {
				e.rt.enqueue(desktop.EffectFailed{Effect: eff.Name(), Reason: err.Error()})
			}
		case desktop.EffectPublishTopicEvent:
			correlation := eff.CorrelationID
			if correlation == "" {
				correlation = id.Correlation()
			}
			deliveries, err := e.router.Publish(ipc.PublishInput{
				Topic:          eff.Topic,
				SourceWindowID: uint64(eff.SourceWindowID),
				Payload:        eff.Payload,
				CorrelationID:  correlation,
				ReplyTo:        eff.ReplyTo,
			})
			e.record(eff.Name(), err)
			if err != nil {
				e.rt.enqueue(desktop.EffectFailed{Effect: eff.Name(), Reason: err.Error()})
				continue
			}
			if e.metrics != nil {
				e.metrics.InboxEventsTotal.Add(float64(len(deliveries)))
			}
			for _, delivery := range deliveries {
				e.events.Publish(Event{
					Type:           EventAppEvent,
					WindowID:       delivery.WindowID,
					Topic:          delivery.Event.Topic,
					Payload:        delivery.Event.Payload,
					SourceWindowID: delivery.Event.SourceWindowID,
					CorrelationID:  delivery.Event.CorrelationID,
					ReplyTo:        delivery.Event.ReplyTo,
				})
			}
		case desktop.EffectParseAndOpenDeepLink:
			e.record(eff.Name(), nil)
			for _, target := range eff.DeepLink.Open {
				e.rt.enqueue(desktop.OpenWindow{Request: desktop.OpenRequestFromDeepLink(target)})
			}
		case desktop.EffectOpenExternalURL:
			e.events.Publish(Event{Type: EventOpenURL, URL: eff.URL})
			e.async(ctx, eff.Name(), true, func(ctx context.Context) error {
				return e.services.URLs.OpenURL(ctx, eff.URL)
			})
		case desktop.EffectPlaySound:
			e.events.Publish(Event{Type: EventSound, Sound: eff.Sound})
			e.async(ctx, eff.Name(), false, func(ctx context.Context) error {
				return e.services.Sounds.Play(ctx, eff.Sound)
			})
		case desktop.EffectSaveConfig:
			e.async(ctx, eff.Name(), true, func(ctx context.Context) error {
				return e.rt.persistence.SaveConfigValue(ctx, eff.Namespace, eff.Key, eff.Value)
			})
		case desktop.EffectLoadWallpaperLibrary:
			e.reloadLibrary(ctx, eff.Name())
		case desktop.EffectImportWallpaper:
			e.async(ctx, eff.Name(), true, func(ctx context.Context) error {
				if _, err := e.services.Assets.Import(ctx, eff.Request); err != nil {
					return err
				}
				e.enqueueLibraryReload(ctx)
				return nil
			})
		case desktop.EffectUpdateWallpaperAssetMetadata:
			e.assetOp(ctx, eff.Name(), func(ctx context.Context) error {
				return e.services.Assets.UpdateMetadata(ctx, eff.AssetID, eff.Patch)
			})
		case desktop.EffectCreateWallpaperCollection:
			e.assetOp(ctx, eff.Name(), func(ctx context.Context) error {
				_, err := e.services.Assets.CreateCollection(ctx, eff.DisplayName)
				return err
			})
		case desktop.EffectRenameWallpaperCollection:
			e.assetOp(ctx, eff.Name(), func(ctx context.Context) error {
				return e.services.Assets.RenameCollection(ctx, eff.CollectionID, eff.DisplayName)
			})
		case desktop.EffectDeleteWallpaperCollection:
			e.assetOp(ctx, eff.Name(), func(ctx context.Context) error {
				return e.services.Assets.DeleteCollection(ctx, eff.CollectionID)
			})
		case desktop.EffectDeleteWallpaperAsset:
			e.assetOp(ctx, eff.Name(), func(ctx context.Context) error {
				return e.services.Assets.DeleteAsset(ctx, eff.AssetID)
			})
		case desktop.EffectNotify:
			e.events.Publish(Event{Type: EventNotice, Title: eff.Title, Body: eff.Body})
			// Notify failures are never fed back; a failing notifier would
			// otherwise loop through EffectFailed forever.
			e.async(ctx, eff.Name(), false, func(ctx context.Context) error {
				return e.services.Notifier.Notify(ctx, eff.Title, eff.Body)
			})
		default:
			e.log.Warn("unhandled effect", zap.String("effect", effect.Name()))
		}
	}
}

// async runs fn on the worker group. When feedback is set, a failure is
// dispatched back into the loop as an EffectFailed action.
func (e *executor) async(ctx context.Context, name string, feedback bool, fn func(ctx context.Context) error) {
	e.group.Go(func() error {
		err := fn(context.WithoutCancel(ctx))
		e.record(name, err)
		if err == nil {
			return nil
		}
		e.log.Warn("effect execution failed", zap.String("effect", name), zap.Error(err))
		if feedback {
			e.rt.enqueue(desktop.EffectFailed{Effect: name, Reason: err.Error()})
		}
		return nil
	})
}

// assetOp runs a wallpaper asset mutation and reloads the library on
// success so the reducer sees the new catalog.
func (e *executor) assetOp(ctx context.Context, name string, fn func(ctx context.Context) error) {
	e.async(ctx, name, true, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		e.enqueueLibraryReload(ctx)
		return nil
	})
}

func (e *executor) reloadLibrary(ctx context.Context, name string) {
	e.async(ctx, name, true, func(ctx context.Context) error {
		library, err := e.services.Assets.Library(ctx)
		if err != nil {
			return err
		}
		e.rt.enqueue(desktop.WallpaperLibraryLoaded{Library: library})
		return nil
	})
}

// enqueueLibraryReload refreshes the reducer's library view after an asset
// mutation. Runs on a worker goroutine.
func (e *executor) enqueueLibraryReload(ctx context.Context) {
	library, err := e.services.Assets.Library(ctx)
	if err != nil {
		e.log.Warn("wallpaper library reload failed", zap.Error(err))
		return
	}
	e.rt.enqueue(desktop.WallpaperLibraryLoaded{Library: library})
}

func (e *executor) record(name string, err error) {
	if e.metrics != nil {
		e.metrics.RecordEffect(name, err)
	}
}
