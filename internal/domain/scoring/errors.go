package scoring

import "errors"

// ErrUnknownRoundPolicy is returned when a policy name is not recognized.
var ErrUnknownRoundPolicy = errors.New("unknown round policy")
