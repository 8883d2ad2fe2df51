package chain

// RetroFitABI is the subset of the RetroFit contract interface the backend talks to
const RetroFitABI = `[
	{
		"inputs": [],
		"name": "projectCounter",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "_projectId", "type": "uint256"}],
		"name": "invest",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_projectId", "type": "uint256"}],
		"name": "getProject",
		"outputs": [
			{
				"components": [
					{"name": "id", "type": "uint256"},
					{"name": "owner", "type": "address"},
					{"name": "name", "type": "string"},
					{"name": "description", "type": "string"},
					{"name": "targetAmount", "type": "uint256"},
					{"name": "raisedAmount", "type": "uint256"},
					{"name": "expectedReturn", "type": "uint256"},
					{"name": "duration", "type": "uint256"},
					{"name": "status", "type": "uint8"},
					{"name": "investorCount", "type": "uint256"}
				],
				"name": "",
				"type": "tuple"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": true, "name": "investor", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "InvestmentMade",
		"type": "event"
	}
]`
