/*
Package flow is a demand-driven dataflow engine.

A Node owns typed, directional sockets. An input reads from at most one
upstream socket. Any socket keeps the list of sockets reading from it, and
the two views are kept symmetric by ConnectFrom and Disconnect.

Evaluation is lazy and invalidation is eager:

  - Reading an output computes its node first if the node is dirty. A node
    computes at most once between invalidations (memoized pull).
  - Writing an unconnected input, or rewiring one, marks the owner dirty and
    floods dirtiness to every node reachable through output edges (push).

The engine is single-threaded and reentrancy is controlled only by the
computing flag on each node. Misuse of the socket contract is reported by
panicking with a *ContractViolation.
*/
package flow
