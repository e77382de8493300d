// Package objective models a traitor's secret mission.
//
// An Objective owns an ordered, fixed list of goals and partitions them into
// pending and completed sets. Start activates the goals for one assignee,
// Update ticks the pending ones, and End reports the outcome. Every
// notification the lifecycle produces goes to the bound Assignee; text is
// produced by an injected Renderer from template IDs and substitution values,
// so this package never formats user-facing copy itself.
//
// An Objective is not safe for concurrent use. Hosts drive Start, Update and
// End from one logical tick loop, or hold a lock around them.
package objective
