//go:build js && wasm

// Command effects is the browser side of the site, compiled to
// WebAssembly: the cloud background, card tilt and the music control.
//
//	GOOS=js GOARCH=wasm go build -o wasm/effects.wasm ./cmd/effects
//	cp "$(go env GOROOT)/lib/wasm/wasm_exec.js" wasm/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"syscall/js"

	"github.com/Zachkp/portfolio/internal/dom"
	"github.com/Zachkp/portfolio/internal/effects"
	"github.com/Zachkp/portfolio/internal/event"
	"github.com/Zachkp/portfolio/internal/parallax"
	"github.com/Zachkp/portfolio/internal/playback"
	"github.com/Zachkp/portfolio/internal/press"
)

// gestures are the first-interaction events that may unlock sound.
var gestures = []string{"pointerdown", "keydown", "touchstart", "wheel", "scroll"}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var teardown []func()
	unmount := func() {
		for i := len(teardown) - 1; i >= 0; i-- {
			teardown[i]()
		}
		teardown = nil
	}

	if layer := dom.ByID("cloud-layer"); dom.Present(layer) {
		clouds := dom.NewClouds(layer, parallax.Clouds)
		loop := parallax.NewLoop(
			parallax.NewEngine(parallax.Clouds, parallax.WithConfig(parallax.DefaultConfig())),
			dom.Frames{}, clouds, dom.Pointer{},
		)
		loop.Mount()
		teardown = append(teardown, loop.Unmount, clouds.Remove)
	}

	if bg := dom.ByID("vanta-bg"); dom.Present(bg) {
		reg := effects.NewRegistry()
		reg.Register("clouds", dom.Vanta("CLOUDS"))
		reg.Register("globe", dom.Vanta("GLOBE"))
		reg.Register("halo", dom.Vanta("HALO"))
		m := reg.Mount(bg.Get("dataset").Get("effect").String(), "vanta-bg")
		teardown = append(teardown, m.Destroy)
	}

	teardown = append(teardown, dom.BindTilt("[data-tilt]", parallax.MaxTilt))

	if stop, err := mountMusic(ctx); err != nil {
		log.Printf("music disabled: %v", err)
	} else {
		teardown = append(teardown, stop)
	}

	pagehide := make(chan struct{})
	dom.Listen(dom.Window(), "pagehide", func(js.Value) {
		select {
		case <-pagehide:
		default:
			close(pagehide)
		}
	})
	<-pagehide
	unmount()
}

// mountMusic wires the control button and the audio element to a playback
// controller. Single press toggles, double press skips, and the first
// gesture anywhere on the page unmutes.
func mountMusic(ctx context.Context) (stop func(), err error) {
	button, audioEl := dom.ByID("music-control"), dom.ByID("bg-audio")
	if !dom.Present(button) || !dom.Present(audioEl) {
		return nil, fmt.Errorf("no music control on this page")
	}

	tracks, err := fetchPlaylist(ctx)
	if err != nil {
		return nil, err
	}
	srcs := make([]string, len(tracks))
	for i, t := range tracks {
		srcs[i] = t.Src
	}

	audio := dom.NewAudio(audioEl)
	ctrl, err := playback.New(audio, srcs, playback.OnChange(func(s playback.State) {
		button.Call("setAttribute", "data-playing", strconv.FormatBool(s.IsPlaying))
		button.Call("setAttribute", "data-muted", strconv.FormatBool(s.IsMuted))
	}))
	if err != nil {
		return nil, err
	}

	// Transport calls await the browser, so they never run on the js
	// callback that triggered them.
	presses := press.New(func(i press.Intent) { go ctrl.Apply(ctx, i) })

	sources := make([]event.Source, 0, len(gestures))
	for _, g := range gestures {
		sources = append(sources, dom.EventSource(dom.Window(), g))
	}
	unlock := event.Once(func() { go ctrl.EnableSound(ctx) }, sources...)

	stopClick := dom.Listen(button, "click", func(js.Value) { presses.Press() })
	stopEnded := audio.OnEnded(func() { go ctrl.TrackEnded(ctx) })

	ctrl.Initialize(ctx)

	return func() {
		stopClick()
		stopEnded()
		unlock.Cancel()
		presses.Stop()
		ctrl.Close()
	}, nil
}

type track struct {
	Title string `json:"title"`
	Src   string `json:"src"`
}

func fetchPlaylist(ctx context.Context) ([]track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/api/playlist", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching playlist: status %d", resp.StatusCode)
	}

	var body struct {
		Tracks []track `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding playlist: %w", err)
	}
	return body.Tracks, nil
}
