/*
Package catalog loads and indexes the fixed asset roster: the vehicles whose
positions the tracking core accepts writes for, and the stops proximity
queries resolve against.

The roster is provisioned once at process start from a YAML file and is
read-only afterwards; the tracking core never creates or destroys assets, it
only mutates their position and status.
*/
package catalog
