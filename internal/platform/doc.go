// Package platform is an in-process task-execution platform for the units
// defined by package orchestration. A Session stores results, starts each
// unit once its data dependencies exist, runs units concurrently under a
// parallelism bound, and enforces the output obligation of every unit.
package platform
