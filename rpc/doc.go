// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rpc serves routers over protocol-agnostic transports.
//
// # Transport Selection
//
// ZAP is the default transport: length-prefixed frames over TCP.
// JSON-RPC 2.0 over HTTP is always available; gRPC needs a build tag:
//
//	go build              # ZAP and JSON-RPC
//	go build -tags grpc   # Enable gRPC transport
//
// # Usage
//
// Server usage:
//
//	app, err := router.Merge(users, billing)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server, err := rpc.Listen(":9000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := rpc.Mount(server, app); err != nil {
//	    log.Fatal(err)
//	}
//	server.Serve(ctx)
//
// Client usage:
//
//	client, err := rpc.Dial(ctx, "localhost:9000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	var user User
//	err = client.Call(ctx, "users.get", GetUser{ID: 7}, &user)
//
// # Wire format
//
// A dispatched response is one status byte followed by the router's
// transformer encoding of either the procedure output or the formatted
// error. Transport failures such as an unknown method travel as
// *RemoteError, failed procedures as *ProcedureError.
//
// # Architecture
//
//   - client.go: Client and Server interfaces, dial and server options
//   - transport.go: transport registry for build-tag extensibility
//   - dial.go: Dial and Listen factories, ZAP client and server
//   - zap.go: ZAP framing
//   - json.go: JSON-RPC 2.0 transport
//   - dial_grpc.go: gRPC transport (requires -tags grpc)
//   - dispatch.go: serving a router's procedures
//   - call.go: response envelope and procedure errors
package rpc
