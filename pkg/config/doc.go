/*
Package config loads shepherd's runtime settings.

Settings come from the environment (CPU_LOW_THRESHOLD, CPU_HIGH_THRESHOLD,
STRATEGY_COOLDOWN, STRATEGY_CASCADE, FIXED_STRATEGY, POLL_INTERVAL,
ERROR_BACKOFF, METRICS_CACHE_TTL, ...), with defaults matching the deployed
scheduler. An optional YAML file supplies the same keys for experiment
manifests; environment values win.

Two threshold cascades are exposed: the default "balanced" envelope
(round-robin in the middle band) and the "bandit" envelope that escalates to
UCB1 under high load. Setting FIXED_STRATEGY pins a single policy and
disables adaptive switching entirely.
*/
package config
