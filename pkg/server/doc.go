// Package server exposes the diff engine over HTTP and streams patch
// scripts to clients over websockets.
//
// # Routes
//
//	GET    /healthz                 liveness and connected session count
//	GET    /metrics                 Prometheus metrics, when Config.Metrics is set
//	POST   /v1/diff                 {"old": tree, "new": tree, "skip": skip, "env": [bool]}
//	GET    /v1/sessions/{id}        render the session snapshot as HTML
//	GET    /v1/sessions/{id}/tree   the session snapshot as a JSON or YAML document
//	DELETE /v1/sessions/{id}        drop the session snapshot
//	GET    /v1/sessions/{id}/ws     websocket patch stream
//
// # Sessions
//
// A websocket session exchanges binary frames from pkg/protocol:
//
//	client                          server
//	Tree ───────────────────────▶   mount (no snapshot or FlagReset)
//	     ◀─────────────────────── Ack{seq}
//	Tree ───────────────────────▶   diff against previous tree
//	     ◀─────────────────────── Patches{seq+1}
//	Ack{seq+1} ─────────────────▶
//	Error{fatal} ───────────────▶   drop snapshot; next Tree mounts
//
// Every tree the server accepts is saved to the snapshot store, so a client
// that reconnects under the same ID resumes diffing against the last tree
// it was sent. A client that has lost its tree sends FlagReset instead.
//
// At most one connection may serve a session ID at a time.
//
// # Usage
//
//	srv := server.New(server.Config{
//	    Addr:    ":7070",
//	    Store:   store,
//	    Metrics: telemetry.NewMetrics(),
//	})
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
