// Package inventory loads the looking glass inventory: groups, devices and
// the command catalog.
//
// An inventory is one or more YAML files. Each may hold any of the top-level
// keys below; files are merged in order, so devices and commands can live in
// separate files:
//
//	merge_policies:
//	  communities: union
//	groups:
//	  core:
//	    allowed_commands: [bgp_summary, ping]
//	    driver: ios            # unknown keys become group settings
//	  edge:
//	    parent: core
//	    disallowed_commands: [ping]
//	devices:
//	  - name: r1.example.net
//	    group: edge
//	    hostname: 192.0.2.1
//	    username: lg
//	    password: secret
//	commands:
//	  ping:
//	    command: "ping {ip}"
//	    description: Ping a host
//	    variables:
//	      - name: ip
//	        required: true
//
// Structure is checked with go-playground/validator after every file is
// merged. Group cycles and dangling parents are not load errors; the
// resolver reports and tolerates them.
package inventory
