/*
Package tracking is the fleet location core: the authoritative in-memory
location store, the change-event fan-out, and the per-session sync loop that
keeps viewers convergent without relying on reliable event delivery.

Write path: operator write -> bounds check -> LocationStore commit ->
UpdatePublisher fan-out. Each viewer session runs a SyncLoop that reacts to
published events immediately and additionally polls a full snapshot on a
fixed interval, so a lost event never leaves a session stale for more than
one poll interval.

The store and publisher are plain constructed values owned by the process
composition root; there are no package-level singletons, so tests build
isolated instances freely.
*/
package tracking
