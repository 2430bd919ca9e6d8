// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads routerd configuration files.
//
// Files are YAML (.yaml, .yml) or JSON with comments and trailing commas
// (.json, .jsonc). Both formats support ${VAR} and ${VAR:-default}
// environment substitution; "$$" escapes a literal dollar sign.
//
//	router:
//	  transformer: cbor+zstd
//	  namespace_delimiter: "."
//	  flag_seed: neutral
//	server:
//	  transport: ${ROUTERD_TRANSPORT:-zap}
//	  address: 127.0.0.1:9650
//	log:
//	  level: info
package config
