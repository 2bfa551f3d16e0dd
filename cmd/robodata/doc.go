// Package main hosts the robodata CLI.
//
// make-dataset turns a directory of recorded episode archives into padded
// train/test arrays plus bounds files. inspect reads a written split back,
// rollout pairs a policy with an environment, and config init scaffolds a
// robodata.toml. Configuration is resolved once per invocation and flags
// override file values only when they are set explicitly.
package main
