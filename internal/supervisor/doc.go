// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

/*
Package supervisor provides process supervision for the Readora server using
suture v4.

The tree has two layers so that a failing background job never takes the
HTTP listener down with it:

	RootSupervisor ("readora")
	├── BackgroundSupervisor ("background-layer")
	│   ├── TrainingService (if training.interval > 0)
	│   └── JanitorService (in-memory response cache)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's failure decay and backoff.
Supervisor events are logged through sutureslog into the zerolog-backed
slog handler from internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
