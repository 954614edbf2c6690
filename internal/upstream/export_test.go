package upstream

var ParseRetryAfter = parseRetryAfter
