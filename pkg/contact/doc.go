/*
Package contact builds spatial contact graphs.

Points are placed uniformly at random inside a bounding box, then connected to
nearby points (within a radius, found through a geo.Grid) until each reaches a
target degree. A random repair pass adds edges between under-connected nodes.

The degree cap is a soft target: nodes in sparse areas may end below it, but
no node ever exceeds it. The repair budget (2n trials) is deliberately fixed.
*/
package contact
