/*
Package feed adapts an external GTFS-Realtime VehiclePositions feed into
writes on the tracking core. It is a collaborator of the core, not part of
its contract: it plays the role of the operator writer, fetching the feed on
a fixed interval and pushing each decoded position through the normal
validated write path.
*/
package feed
