/*
Package geo provides the geometry used to build spatial contact graphs.

It covers great-circle distance (Haversine), rectangular latitude/longitude
bounds, and a uniform bucketing Grid that answers "which points could be near
this one" queries in constant time per cell.

The Grid uses a local flat-earth projection anchored at a fixed latitude. This is
accurate enough for city-sized areas (tens of kilometres) and is the reason
callers must post-filter candidates with Haversine.
*/
package geo
