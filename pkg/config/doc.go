// Package config reads and writes stub documents.
//
// A stub document is YAML: a list of entries, each pairing a request pattern
// with one response or a sequence of responses cycled in order.
//
//	- description: first user
//	  request:
//	    method: GET
//	    url: ^/users/\d+$
//	    headers:
//	      accept: application/json
//	  response:
//	    - status: 200
//	      body: '{"id": 1}'
//	    - status: 503
//	      latency: 250
//
// Documents are checked against a JSON Schema before they are built into
// lifecycles. Relative file references resolve against the directory of the
// declaring document.
package config
