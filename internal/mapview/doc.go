// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package mapview owns the viewing state of every open map.

Each Session is a single goroutine consuming an event channel. The goroutine
exclusively owns the session's observation list, bounds, render state,
selection and notice; HTTP handlers and background fetches only ever post
events to it. Viewport events run the spatial pipeline

	Tracker.Read -> Filter -> Selector.Select

to completion before the next event is taken, so a recomputation always reads
the list and bounds current at that moment and no stale recomputation is ever
queued.

Network calls never run on the loop. The listing fetch and view increments
run in their own goroutines and post their results back as events. A view
increment result only replaces entries whose id matches the returned
observation: the selection is updated only if it is still that observation,
so a slow response cannot overwrite a newer selection.

The Manager keeps the registry of sessions and creation drafts, reaps idle
ones from a supervised loop, and fans newly created observations out to
every live session.
*/
package mapview
