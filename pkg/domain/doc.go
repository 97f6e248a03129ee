/*
Package domain contains the core data model of the epidemic simulator.

It defines the spatial contact graph (Nodes, Edges, adjacency), the per-agent
disease state of the SEIQR model, and the Simulation that ties a population of
agents to a graph and records its daily history. This package is kept pure and
free of I/O, randomness and persistence concerns.

# Key Entities

  - Graph: immutable contact network; node index doubles as the agent index.
  - Agent: disease State plus the day stamps of its transitions.
  - Simulation: agents, day counter, time series and lockdown policy flag.
  - Params: epidemiological constants driving the daily step.
*/
package domain
