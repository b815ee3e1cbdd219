// Package montecarlo prices a weighted basket of assets by Monte Carlo
// simulation under a risk-neutral geometric Brownian motion model.
//
// The package is pure computation: it performs no I/O and holds no global
// state. Every simulation draws from a NormalSource owned by the caller, so
// concurrently running units of work never share a random stream.
package montecarlo
