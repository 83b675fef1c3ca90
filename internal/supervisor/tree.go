// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package supervisor runs Syncify's long-lived services under a suture tree.
//
// The root supervisor owns one child supervisor per Layer. A service that
// keeps failing backs off inside its own layer; the other layers keep
// running.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names a child supervisor of the root.
type Layer string

const (
	LayerRealtime Layer = "realtime-layer" // presence and event relay hub
	LayerWorkers  Layer = "worker-layer"   // background jobs such as reminders
	LayerAPI      Layer = "api-layer"      // HTTP server
)

var layerOrder = []Layer{LayerRealtime, LayerWorkers, LayerAPI}

// TreeConfig carries suture's restart parameters. Zero fields take the
// values from DefaultTreeConfig.
type TreeConfig struct {
	FailureThreshold float64       // failures before backing off
	FailureDecay     float64       // seconds for the failure count to halve
	FailureBackoff   time.Duration // pause once the threshold is crossed
	ShutdownTimeout  time.Duration // per-service stop deadline
}

func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) sutureSpec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// Tree is the process supervisor.
type Tree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig
}

// NewTree builds the root and its layers. Supervisor events from the whole
// tree are logged once, through the root's hook.
func NewTree(logger *slog.Logger, config TreeConfig) *Tree {
	config = config.withDefaults()

	rootSpec := config.sutureSpec()
	rootSpec.EventHook = (&sutureslog.Handler{Logger: logger}).MustHook()

	t := &Tree{
		root:   suture.New("syncify", rootSpec),
		layers: make(map[Layer]*suture.Supervisor, len(layerOrder)),
		config: config,
	}
	for _, l := range layerOrder {
		sup := suture.New(string(l), config.sutureSpec())
		t.layers[l] = sup
		t.root.Add(sup)
	}
	return t
}

// Add places svc under layer. An unknown layer panics; layers are fixed at
// compile time.
func (t *Tree) Add(layer Layer, svc suture.Service) suture.ServiceToken {
	sup, ok := t.layers[layer]
	if !ok {
		panic("supervisor: unknown layer " + string(layer))
	}
	return sup.Add(svc)
}

func (t *Tree) Root() *suture.Supervisor { return t.root }

// Serve blocks until ctx is canceled or the root gives up.
func (t *Tree) Serve(ctx context.Context) error { return t.root.Serve(ctx) }

func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown deadline.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
