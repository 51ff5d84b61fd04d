/*
Package bisect narrows down which maintenance update made a test job fail.

When a job regresses and its settings diff against the last known-good run
shows several candidate updates ("incidents") changed for a tracked variable,
there is no way to tell from a single run which of them is at fault. This
package synthesizes one bisection job per suspect incident, each rerunning
the original scenario with exactly that one incident's references removed,
so the job whose rerun passes points at the culprit.

The entrypoint is [Trigger.Run], which takes the URL of the failed job and
drives the whole pipeline: it evaluates the guard conditions on the job,
fetches the investigation diff, parses it with [ParseDiff] into a [ChangeSet],
derives the [BisectionJob] plan with [SynthesizePlan], triggers one clone per
suspect and posts a single aggregate comment linking all created jobs.

A run is deliberately sequential and makes no attempt at deduplication:
re-running it against the same job can create the same bisection jobs again.
Only the guard conditions on the origin job itself prevent re-triggering.
*/
package bisect
