package statistic

const redisKeyScoreLeaderboard = "leaderboard:score"
