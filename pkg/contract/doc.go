// Package contract loads the OpenAPI description of the goal breakdown
// endpoint. The client resolves its method and path from it and validates
// decoded responses against the declared schemas.
package contract
