/*
Package epinet simulates an SEIQR epidemic spreading over a spatial contact graph.

A population of n agents is scattered uniformly over a geographic bounding box.
Agents within the infection radius of each other become neighbours, up to a soft
target degree, and the disease can only travel along those edges. Every simulated
day agents move through the compartments

	S (susceptible) -> E (exposed) -> I (infectious) -> R (recovered)
	                                  I -> Q (quarantined) -> R

and a lockdown is imposed, once and for good, when the number of infectious
agents reaches a threshold.

# Usage

	svc, err := epinet.New(epinet.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	created, err := svc.Generate(ctx, 1000)
	if err != nil {
		log.Fatal(err)
	}

	status, err := svc.Step(ctx, created.SimID, 30)
	fmt.Println(status.Day, status.Counts, status.Message)

The Service keeps graphs and simulations in in-memory stores by default. Steps on
the same simulation are serialized; WithLocker extends that to several replicas.
*/
package epinet
