package utdf2sumo

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "utdf2sumo")
