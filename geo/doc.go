/*
Package geo provides coordinate types, operating-region bounds checking and
great-circle distance math for the fleet tracking core.

Everything in this package is pure computation: no state, no I/O, no
dependency on the tracking packages. Bounds checking is applied only on the
write path (by the location store); proximity queries deliberately accept
coordinates outside the operating region.
*/
package geo
